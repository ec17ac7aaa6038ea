package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/pkg/clock"
	"github.com/shandysiswandi/skillbridge/internal/pkg/config"
	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/pkg/hash"
	"github.com/shandysiswandi/skillbridge/internal/pkg/idempotency"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/jwt"
	"github.com/shandysiswandi/skillbridge/internal/pkg/validator"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"github.com/shandysiswandi/skillbridge/internal/training/outbound/cache"
)

const testConfig = `
modules:
  training:
    otp:
      ttl_seconds: 300
      retention_seconds: 600
      max_attempts: 5
      send_cooldown_seconds: 30
    receipt:
      url_ttl_minutes: 60
`

var start = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

// at pins the test clock at start plus offset.
func (h *harness) at(offset time.Duration) {
	h.clock.Set(start.Add(offset))
}

type fakeCodes struct {
	mu    sync.Mutex
	codes []string
	err   error
}

func (g *fakeCodes) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	code := g.codes[0]
	if len(g.codes) > 1 {
		g.codes = g.codes[1:]
	}
	return code, nil
}

type seqID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type fakeDB struct {
	mu            sync.Mutex
	trainings     map[int64]*entity.Training
	registered    map[int64]bool
	finalized     []entity.Registration
	finalizeErr   error
	receiptKeys   map[int64]string
	registrations []entity.RegistrationSummary
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		trainings: map[int64]*entity.Training{
			1001: {ID: 1001, Title: "Go for Backend Freshers", PriceAmount: 150000000, Currency: "IDR", Capacity: 30, Status: entity.TrainingStatusOpen},
			1003: {ID: 1003, Title: "Cloud Fundamentals", PriceAmount: 80000000, Currency: "IDR", Capacity: 25, Booked: 25, Status: entity.TrainingStatusClosed},
		},
		registered:  map[int64]bool{},
		receiptKeys: map[int64]string{},
	}
}

func (f *fakeDB) GetTraining(_ context.Context, id int64) (*entity.Training, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.trainings[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeDB) ListOpenTrainings(context.Context, entity.TrainingListFilter) ([]entity.Training, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Training
	for _, t := range f.trainings {
		if t.Status == entity.TrainingStatusOpen {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeDB) CountOpenTrainings(ctx context.Context, filter entity.TrainingListFilter) (int64, error) {
	list, _ := f.ListOpenTrainings(ctx, filter)
	return int64(len(list)), nil
}

func (f *fakeDB) IsRegistered(_ context.Context, trainingID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registered[trainingID*1_000_000+userID], nil
}

func (f *fakeDB) ListRegistrationsByUser(context.Context, int64) ([]entity.RegistrationSummary, error) {
	return f.registrations, nil
}

func (f *fakeDB) FinalizeRegistration(_ context.Context, reg entity.Registration) (*entity.Training, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	t := f.trainings[reg.TrainingID]
	if t == nil || !t.Bookable() || f.registered[reg.TrainingID*1_000_000+reg.UserID] {
		return nil, goerror.ErrConflict
	}
	t.Booked++
	f.registered[reg.TrainingID*1_000_000+reg.UserID] = true
	f.finalized = append(f.finalized, reg)
	cp := *t
	return &cp, nil
}

func (f *fakeDB) SetReceiptKey(_ context.Context, id int64, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receiptKeys[id] = key
	return nil
}

type fakeMQ struct {
	mu         sync.Mutex
	otps       []PaymentOTPEvent
	confirmed  []RegistrationConfirmedEvent
	publishErr error
}

func (m *fakeMQ) PublishPaymentOTP(_ context.Context, msg PaymentOTPEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.otps = append(m.otps, msg)
	return nil
}

func (m *fakeMQ) PublishRegistrationConfirmed(_ context.Context, msg RegistrationConfirmedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, msg)
	return nil
}

type fakeReceipt struct {
	stored []entity.Receipt
	err    error
}

func (r *fakeReceipt) Store(_ context.Context, rc entity.Receipt) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.stored = append(r.stored, rc)
	return "receipts/1001/x.json", nil
}

func (r *fakeReceipt) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.example.com/" + key + "?sig=1", nil
}

// countingStore counts verify lookups against the real memory store.
type countingStore struct {
	*cache.Memory
	mu       sync.Mutex
	verifies int
}

func (c *countingStore) Verify(ctx context.Context, in entity.VerifyChallenge) (entity.VerifyResult, error) {
	c.mu.Lock()
	c.verifies++
	c.mu.Unlock()
	return c.Memory.Verify(ctx, in)
}

// fakeThrottle mirrors the redis state tracker on the fake clock.
type fakeThrottle struct {
	mu    sync.Mutex
	clock *clock.Manual
	until map[string]time.Time
}

func (f *fakeThrottle) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}
func (f *fakeThrottle) MarkCompleted(context.Context, string, time.Duration) error { return nil }
func (f *fakeThrottle) MarkFailed(context.Context, string, time.Duration) error    { return nil }

func (f *fakeThrottle) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.until, key)
	return nil
}

func (f *fakeThrottle) Remaining(_ context.Context, key string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return max(f.until[key].Sub(f.clock.Now()), 0), nil
}

func (f *fakeThrottle) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	f.mu.Lock()
	if f.clock.Now().Before(f.until[key]) {
		f.mu.Unlock()
		return idempotency.ErrAlreadyCompleted
	}
	f.until[key] = f.clock.Now().Add(30 * time.Second)
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		_ = f.Release(ctx, key)
		return err
	}
	return nil
}

type harness struct {
	uc      *Usecase
	clock   *clock.Manual
	db      *fakeDB
	mq      *fakeMQ
	codes   *fakeCodes
	store   *countingStore
	receipt *fakeReceipt
}

func newHarness(t *testing.T, codes ...string) *harness {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	if len(codes) == 0 {
		codes = []string{"123456"}
	}

	h := &harness{
		clock:   clock.NewManual(start),
		db:      newFakeDB(),
		mq:      &fakeMQ{},
		codes:   &fakeCodes{codes: codes},
		store:   &countingStore{Memory: cache.NewMemory(instrument.NewNoop())},
		receipt: &fakeReceipt{},
	}
	h.uc = New(Dependency{
		RepoDB:        h.db,
		RepoMessaging: h.mq,
		RepoChallenge: h.store,
		RepoReceipt:   h.receipt,
		Idempotency:   &fakeThrottle{clock: h.clock, until: map[string]time.Time{}},
		Validator:     v,
		Config:        cfg,
		HMAC:          hash.NewHMACSHA256("test-secret"),
		Code:          h.codes,
		UID:           &seqID{next: 500},
		Clock:         h.clock,
		Instrument:    instrument.NewNoop(),
	})

	return h
}

func authed() context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: 7, UserEmail: " Fresher@Example.com "})
}

func sendInput() SendPaymentOTPInput {
	return SendPaymentOTPInput{
		TrainingID:   1001,
		FullName:     "Ayu Lestari",
		Phone:        "+6281234567890",
		Organization: "Universitas Indonesia",
		Method:       "card",
		Amount:       150000000,
		Currency:     "idr",
		PayerName:    "Ayu Lestari",
		CardLastFour: "4242",
	}
}

func assertIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

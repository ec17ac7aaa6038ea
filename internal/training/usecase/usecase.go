package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/pkg/clock"
	"github.com/shandysiswandi/skillbridge/internal/pkg/config"
	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/pkg/hash"
	"github.com/shandysiswandi/skillbridge/internal/pkg/idempotency"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/jwt"
	"github.com/shandysiswandi/skillbridge/internal/pkg/otp"
	"github.com/shandysiswandi/skillbridge/internal/pkg/uid"
	"github.com/shandysiswandi/skillbridge/internal/pkg/validator"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultOTPTTL       = 300 * time.Second
	defaultOTPRetention = 600 * time.Second
	defaultSendCooldown = 30 * time.Second
	defaultReceiptTTL   = 60 * time.Minute
)

type PaymentOTPEvent struct {
	ChallengeID   int64
	UserID        int64
	Email         string
	FullName      string
	TrainingID    int64
	TrainingTitle string
	Code          string
	ExpiresAt     time.Time
	TTL           time.Duration
}

type RegistrationConfirmedEvent struct {
	RegistrationID        int64
	UserID                int64
	Email                 string
	FullName              string
	TrainingID            int64
	TrainingTitle         string
	FinalizationReference string
	ReceiptURL            string
	Amount                int64
	Currency              string
}

type repoMessaging interface {
	PublishPaymentOTP(ctx context.Context, msg PaymentOTPEvent) error
	PublishRegistrationConfirmed(ctx context.Context, msg RegistrationConfirmedEvent) error
}

type repoDB interface {
	GetTraining(ctx context.Context, id int64) (*entity.Training, error)
	ListOpenTrainings(ctx context.Context, f entity.TrainingListFilter) ([]entity.Training, error)
	CountOpenTrainings(ctx context.Context, f entity.TrainingListFilter) (int64, error)
	IsRegistered(ctx context.Context, trainingID, userID int64) (bool, error)
	ListRegistrationsByUser(ctx context.Context, userID int64) ([]entity.RegistrationSummary, error)

	FinalizeRegistration(ctx context.Context, reg entity.Registration) (*entity.Training, error)
	SetReceiptKey(ctx context.Context, registrationID int64, key string) error
}

type repoChallenge interface {
	Put(ctx context.Context, c entity.Challenge, ttl time.Duration) error
	Verify(ctx context.Context, in entity.VerifyChallenge) (entity.VerifyResult, error)
	Release(ctx context.Context, contact string, trainingID, challengeID int64) error
	Revoke(ctx context.Context, contact string, trainingID, challengeID int64) error
}

type repoReceipt interface {
	Store(ctx context.Context, rc entity.Receipt) (string, error)
	URL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	repoChallenge repoChallenge
	repoReceipt   repoReceipt
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	code          otp.Generator
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation

	issuedCounter   metric.Int64Counter
	verifiedCounter metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	RepoChallenge repoChallenge
	// RepoReceipt is optional; receipts are skipped without it.
	RepoReceipt repoReceipt
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Config      config.Config
	HMAC        hash.Hash
	Code        otp.Generator
	UID         uid.NumberID
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		repoChallenge: dep.RepoChallenge,
		repoReceipt:   dep.RepoReceipt,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		code:          dep.Code,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
	}

	meter := dep.Instrument.Meter("training.usecase")
	var err error
	if s.issuedCounter, err = meter.Int64Counter("training.payment_otp.issued"); err != nil {
		slog.Warn("failed to create issued counter", "error", err)
		s.issuedCounter = noop.Int64Counter{}
	}
	if s.verifiedCounter, err = meter.Int64Counter("training.payment_otp.verified"); err != nil {
		slog.Warn("failed to create verified counter", "error", err)
		s.verifiedCounter = noop.Int64Counter{}
	}

	return s
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("training.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return clm, nil
}

type subject struct {
	Email string `validate:"required,email"`
}

// subjectContact is the address the code is delivered to and bound with.
func (s *Usecase) subjectContact(clm *jwt.Claims) (string, error) {
	contact := strings.ToLower(strings.TrimSpace(clm.UserEmail))
	if err := s.validator.Validate(subject{Email: contact}); err != nil {
		return "", entity.NewErrInvalidInput(err)
	}

	return contact, nil
}

func (s *Usecase) otpTTL() time.Duration {
	if v := s.cfg.GetSecond("modules.training.otp.ttl_seconds"); v > 0 {
		return v
	}
	return defaultOTPTTL
}

func (s *Usecase) otpRetention() time.Duration {
	if v := s.cfg.GetSecond("modules.training.otp.retention_seconds"); v > 0 {
		return v
	}
	return defaultOTPRetention
}

// maxAttempts of zero disables the lockout.
func (s *Usecase) maxAttempts() int {
	return max(s.cfg.GetInt("modules.training.otp.max_attempts"), 0)
}

func (s *Usecase) sendCooldown() time.Duration {
	if v := s.cfg.GetSecond("modules.training.otp.send_cooldown_seconds"); v > 0 {
		return v
	}
	return defaultSendCooldown
}

func (s *Usecase) receiptTTL() time.Duration {
	if v := s.cfg.GetMinute("modules.training.receipt.url_ttl_minutes"); v > 0 {
		return v
	}
	return defaultReceiptTTL
}

func (s *Usecase) hashCode(contact string, trainingID int64, code string) (string, error) {
	sum, err := s.hmac.Hash(contact + "|" + strconv.FormatInt(trainingID, 10) + "|" + code)
	if err != nil {
		return "", err
	}
	return string(sum), nil
}

func (s *Usecase) fingerprint(tc entity.TransactionContext) (string, error) {
	raw, err := tc.Canonical()
	if err != nil {
		return "", err
	}

	sum, err := s.hmac.Hash(string(raw))
	if err != nil {
		return "", err
	}
	return string(sum), nil
}

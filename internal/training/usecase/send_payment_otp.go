package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/pkg/idempotency"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type SendPaymentOTPInput struct {
	TrainingID   int64  `validate:"required,gt=0"`
	FullName     string `validate:"required,min=3,max=120,alphaspace"`
	Phone        string `validate:"required,phone"`
	Organization string `validate:"max=160"`
	Notes        string `validate:"max=500"`
	Method       string `validate:"required,oneof=card upi bank_transfer"`
	Amount       int64  `validate:"required,gt=0"`
	Currency     string `validate:"required,currency"`
	PayerName    string `validate:"required,max=120"`
	CardLastFour string `validate:"required_if=Method card,omitempty,len=4,numeric"`
}

// Context normalises the input into the transaction context the code is
// bound to.
func (in SendPaymentOTPInput) Context() entity.TransactionContext {
	tc := entity.TransactionContext{
		TrainingID: in.TrainingID,
		Registration: entity.RegistrationData{
			FullName:     strings.TrimSpace(in.FullName),
			Phone:        strings.TrimSpace(in.Phone),
			Organization: strings.TrimSpace(in.Organization),
			Notes:        strings.TrimSpace(in.Notes),
		},
		Payment: entity.PaymentDetails{
			Method:    entity.PaymentMethodFromString(in.Method),
			Amount:    in.Amount,
			Currency:  strings.ToUpper(strings.TrimSpace(in.Currency)),
			PayerName: strings.TrimSpace(in.PayerName),
		},
	}
	if tc.Payment.Method == entity.PaymentMethodCard {
		tc.Payment.CardLastFour = strings.TrimSpace(in.CardLastFour)
	}

	return tc
}

type SendPaymentOTPOutput struct {
	ExpiresAt   time.Time
	TTL         time.Duration
	ResendAfter time.Duration
}

func (s *Usecase) SendPaymentOTP(ctx context.Context, in SendPaymentOTPInput) (*SendPaymentOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "SendPaymentOTP")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	contact, err := s.subjectContact(clm)
	if err != nil {
		return nil, err
	}

	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.Method = strings.ToLower(strings.TrimSpace(in.Method))
	if err := s.validator.Validate(in); err != nil {
		return nil, entity.NewErrInvalidInput(err)
	}

	tc := in.Context()
	training, err := s.bookableTraining(ctx, clm.UserID, tc)
	if err != nil {
		return nil, err
	}

	var out *SendPaymentOTPOutput
	cooldown := s.sendCooldown()
	throttleKey := s.throttleKey(contact, tc.TrainingID)
	err = s.idemp.Exec(ctx, throttleKey, func(ctx context.Context) error {
		issued, err := s.issue(ctx, clm.UserID, contact, training, tc)
		if err != nil {
			return err
		}
		out = issued
		return nil
	},
		idempotency.WithLockDuration(cooldown),
		idempotency.WithStateTTL(cooldown),
		idempotency.WithReleaseOnFailure(),
	)
	if errors.Is(err, idempotency.ErrAlreadyCompleted) || errors.Is(err, idempotency.ErrAlreadyInProgress) {
		wait, werr := s.idemp.Remaining(ctx, throttleKey)
		if werr != nil {
			slog.WarnContext(ctx, "failed to read payment otp throttle", "error", werr)
		}
		slog.WarnContext(ctx, "payment otp send throttled", "user_id", clm.UserID, "training_id", tc.TrainingID, "wait", wait)
		return nil, entity.NewErrSendThrottled(wait)
	}
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, gerr
		}
		slog.ErrorContext(ctx, "failed to throttle payment otp send", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	out.ResendAfter = cooldown
	return out, nil
}

// bookableTraining checks the requested context against the catalog.
func (s *Usecase) bookableTraining(ctx context.Context, userID int64, tc entity.TransactionContext) (*entity.Training, error) {
	training, err := s.repoDB.GetTraining(ctx, tc.TrainingID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, entity.NewErrTrainingNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get training", "training_id", tc.TrainingID, "error", err)
		return nil, goerror.NewServer(err)
	}

	switch {
	case training.Status != entity.TrainingStatusOpen:
		return nil, entity.NewErrInvalidContext("Training is not open for registration")
	case training.IsFull():
		return nil, entity.NewErrInvalidContext("Training is fully booked")
	case !training.Charges(tc.Payment):
		return nil, entity.NewErrInvalidContext("Payment amount does not match the training price")
	}

	registered, err := s.repoDB.IsRegistered(ctx, tc.TrainingID, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo check registration", "training_id", tc.TrainingID, "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if registered {
		return nil, entity.NewErrInvalidContext("You are already registered for this training")
	}

	return training, nil
}

func (s *Usecase) issue(ctx context.Context, userID int64, contact string, training *entity.Training, tc entity.TransactionContext) (*SendPaymentOTPOutput, error) {
	code, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate payment otp", "error", err)
		return nil, goerror.NewServer(err)
	}

	codeHash, err := s.hashCode(contact, tc.TrainingID, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash payment otp", "error", err)
		return nil, goerror.NewServer(err)
	}

	fp, err := s.fingerprint(tc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fingerprint transaction context", "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.otpTTL()
	now := s.clock.Now()
	chal := entity.Challenge{
		ID:          s.uid.Generate(),
		Contact:     contact,
		TrainingID:  tc.TrainingID,
		CodeHash:    codeHash,
		Context:     tc,
		Fingerprint: fp,
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
	}

	if err := s.repoChallenge.Put(ctx, chal, ttl+s.otpRetention()); err != nil {
		slog.ErrorContext(ctx, "failed to repo put challenge", "challenge_id", chal.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMessaging.PublishPaymentOTP(ctx, PaymentOTPEvent{
		ChallengeID:   chal.ID,
		UserID:        userID,
		Email:         contact,
		FullName:      tc.Registration.FullName,
		TrainingID:    training.ID,
		TrainingTitle: training.Title,
		Code:          code,
		ExpiresAt:     chal.ExpiresAt,
		TTL:           ttl,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish payment otp", "challenge_id", chal.ID, "error", err)
		if rErr := s.repoChallenge.Revoke(ctx, contact, tc.TrainingID, chal.ID); rErr != nil {
			slog.ErrorContext(ctx, "failed to repo revoke challenge", "challenge_id", chal.ID, "error", rErr)
		}
		return nil, entity.NewErrDeliveryFailed()
	}

	s.issuedCounter.Add(ctx, 1, metric.WithAttributes(attribute.Int64("training_id", tc.TrainingID)))
	slog.InfoContext(ctx, "payment otp issued", "challenge_id", chal.ID, "training_id", tc.TrainingID, "user_id", userID)

	return &SendPaymentOTPOutput{ExpiresAt: chal.ExpiresAt, TTL: ttl}, nil
}

// throttleKey keeps the raw contact out of the key space.
func (s *Usecase) throttleKey(contact string, trainingID int64) string {
	sum, err := s.hmac.Hash(contact)
	if err != nil {
		sum = []byte(contact)
	}
	return "training:payment_otp_send:" + string(sum) + ":" + strconv.FormatInt(trainingID, 10)
}

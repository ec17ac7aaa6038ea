package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/pkg/jwt"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type VerifyPaymentOTPInput struct {
	TrainingID int64  `validate:"required,gt=0"`
	Code       string `validate:"required,otpcode"`
	// Echo is the client's copy of the pending context. It is only compared
	// against the stored one, never used to finalize.
	Echo *SendPaymentOTPInput `validate:"-"`
}

type VerifyPaymentOTPOutput struct {
	RegistrationID        int64
	PaymentReference      string
	FinalizationReference string
	ReceiptURL            string
}

func (s *Usecase) VerifyPaymentOTP(ctx context.Context, in VerifyPaymentOTPInput) (*VerifyPaymentOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyPaymentOTP")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, entity.NewErrInvalidInput(err)
	}

	contact, err := s.subjectContact(clm)
	if err != nil {
		return nil, err
	}

	var fp string
	if in.Echo != nil {
		echo := *in.Echo
		echo.TrainingID = in.TrainingID
		echo.Currency = strings.ToUpper(strings.TrimSpace(echo.Currency))
		echo.Method = strings.ToLower(strings.TrimSpace(echo.Method))
		if fp, err = s.fingerprint(echo.Context()); err != nil {
			slog.ErrorContext(ctx, "failed to fingerprint transaction context", "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	codeHash, err := s.hashCode(contact, in.TrainingID, in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash payment otp", "error", err)
		return nil, goerror.NewServer(err)
	}

	res, err := s.repoChallenge.Verify(ctx, entity.VerifyChallenge{
		Contact:     contact,
		TrainingID:  in.TrainingID,
		CodeHash:    codeHash,
		Fingerprint: fp,
		Now:         s.clock.Now(),
		MaxAttempts: s.maxAttempts(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo verify challenge", "training_id", in.TrainingID, "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.verifiedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", res.Outcome.String())))

	switch res.Outcome {
	case entity.VerifyOutcomeMatched:
	case entity.VerifyOutcomeNoChallenge:
		return nil, entity.NewErrNoActiveChallenge()
	case entity.VerifyOutcomeConsumed:
		return nil, entity.NewErrAlreadyConsumed()
	case entity.VerifyOutcomeExpired:
		return nil, entity.NewErrExpired()
	case entity.VerifyOutcomeContextMismatch:
		slog.WarnContext(ctx, "payment otp context mismatch", "training_id", in.TrainingID, "user_id", clm.UserID)
		return nil, entity.NewErrInvalidContext("Registration details changed, please request a new OTP")
	case entity.VerifyOutcomeCodeMismatch:
		slog.WarnContext(ctx, "payment otp mismatch", "training_id", in.TrainingID, "user_id", clm.UserID, "attempts", res.Attempts)
		return nil, entity.NewErrInvalidCode()
	case entity.VerifyOutcomeLocked:
		slog.WarnContext(ctx, "payment otp locked", "training_id", in.TrainingID, "user_id", clm.UserID, "attempts", res.Attempts)
		return nil, entity.NewErrTooManyAttempts()
	default:
		slog.ErrorContext(ctx, "unknown verify outcome", "outcome", int(res.Outcome))
		return nil, goerror.NewServer(errors.New("unknown verify outcome"))
	}

	return s.finalize(ctx, clm, res.Challenge)
}

func (s *Usecase) finalize(ctx context.Context, clm *jwt.Claims, chal *entity.Challenge) (*VerifyPaymentOTPOutput, error) {
	regID := s.uid.Generate()
	reg := entity.Registration{
		ID:               regID,
		TrainingID:       chal.TrainingID,
		UserID:           clm.UserID,
		Email:            chal.Contact,
		Data:             chal.Context.Registration,
		Payment:          chal.Context.Payment,
		PaymentID:        s.uid.Generate(),
		PaymentReference: "TRN-" + strconv.FormatInt(regID, 10),
		ChallengeID:      chal.ID,
		Status:           entity.RegistrationStatusPaid,
		CreatedAt:        s.clock.Now(),
	}

	training, err := s.repoDB.FinalizeRegistration(ctx, reg)
	if errors.Is(err, goerror.ErrConflict) || errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "training no longer bookable", "training_id", reg.TrainingID, "challenge_id", chal.ID)
		return nil, entity.NewErrInvalidContext("Training is no longer available")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo finalize registration", "challenge_id", chal.ID, "error", err)
		if rErr := s.repoChallenge.Release(ctx, chal.Contact, chal.TrainingID, chal.ID); rErr != nil {
			slog.ErrorContext(ctx, "failed to repo release challenge", "challenge_id", chal.ID, "error", rErr)
		}
		return nil, goerror.NewServer(err)
	}

	out := &VerifyPaymentOTPOutput{
		RegistrationID:        reg.ID,
		PaymentReference:      reg.PaymentReference,
		FinalizationReference: reg.FinalizationReference(),
	}
	if url := s.storeReceipt(ctx, reg, training); url != "" {
		out.ReceiptURL = url
		out.FinalizationReference = url
	}

	if err := s.repoMessaging.PublishRegistrationConfirmed(ctx, RegistrationConfirmedEvent{
		RegistrationID:        reg.ID,
		UserID:                reg.UserID,
		Email:                 reg.Email,
		FullName:              reg.Data.FullName,
		TrainingID:            training.ID,
		TrainingTitle:         training.Title,
		FinalizationReference: reg.PaymentReference,
		ReceiptURL:            out.ReceiptURL,
		Amount:                reg.Payment.Amount,
		Currency:              reg.Payment.Currency,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish registration confirmed", "registration_id", reg.ID, "error", err)
	}

	slog.InfoContext(ctx, "training registration finalized", "registration_id", reg.ID, "challenge_id", chal.ID)

	return out, nil
}

// storeReceipt is best effort; a failure leaves the registration without a
// receipt URL.
func (s *Usecase) storeReceipt(ctx context.Context, reg entity.Registration, training *entity.Training) string {
	if s.repoReceipt == nil {
		return ""
	}

	key, err := s.repoReceipt.Store(ctx, entity.Receipt{
		RegistrationID:   reg.ID,
		PaymentReference: reg.PaymentReference,
		TrainingID:       training.ID,
		TrainingTitle:    training.Title,
		TraineeName:      reg.Data.FullName,
		Email:            reg.Email,
		Method:           reg.Payment.Method.String(),
		Amount:           reg.Payment.Amount,
		Currency:         reg.Payment.Currency,
		PaidAt:           reg.CreatedAt,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to store receipt", "registration_id", reg.ID, "error", err)
		return ""
	}

	if err := s.repoDB.SetReceiptKey(ctx, reg.ID, key); err != nil {
		slog.ErrorContext(ctx, "failed to repo set receipt key", "registration_id", reg.ID, "error", err)
	}

	url, err := s.repoReceipt.URL(ctx, key, s.receiptTTL())
	if err != nil {
		slog.ErrorContext(ctx, "failed to presign receipt", "registration_id", reg.ID, "error", err)
		return ""
	}

	return url
}

package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/notification/entity"
)

type ConsumeTrainingPaymentOTPInput struct {
	ChallengeID      int64     `validate:"required,gt=0"`
	UserID           int64     `validate:"required,gt=0"`
	Email            string    `validate:"required,email"`
	FullName         string    `validate:"required,max=120"`
	TrainingID       int64     `validate:"required,gt=0"`
	TrainingTitle    string    `validate:"required"`
	Code             string    `validate:"required,otpcode"`
	ExpiresAt        time.Time `validate:"required"`
	ExpiresInMinutes int       `validate:"gte=0"`
}

// ConsumeTrainingPaymentOTP emails a payment code. Codes that expired while
// queued are dropped.
func (s *Usecase) ConsumeTrainingPaymentOTP(ctx context.Context, in ConsumeTrainingPaymentOTPInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeTrainingPaymentOTP")
	defer span.End()

	di := deliverInput{
		TriggerKey:  entity.TriggerKeyPaymentOTP,
		Recipient:   in.Email,
		ReferenceID: strconv.FormatInt(in.ChallengeID, 10),
		Subject:     s.cfg.GetString("modules.notification.mail.payment_otp_subject"),
	}

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "challenge_id", in.ChallengeID, "error", err)
		s.skip(ctx, di, "invalid payload")
		return nil
	}

	if !s.clock.Now().Before(in.ExpiresAt) {
		s.skip(ctx, di, "code expired before delivery")
		return nil
	}

	minutes := in.ExpiresInMinutes
	if minutes <= 0 {
		minutes = max(int(in.ExpiresAt.Sub(s.clock.Now()).Round(time.Minute)/time.Minute), 1)
	}

	di.Data = s.baseTemplateData()
	di.Data["full_name"] = in.FullName
	di.Data["training_title"] = in.TrainingTitle
	di.Data["code"] = in.Code
	di.Data["expires_in_minutes"] = minutes
	di.Data["expires_at"] = in.ExpiresAt.UTC().Format(time.RFC1123)

	return s.deliver(ctx, di)
}

package inbound

import (
	"context"

	"github.com/shandysiswandi/skillbridge/internal/notification/usecase"
)

type uc interface {
	ConsumeTrainingPaymentOTP(ctx context.Context, in usecase.ConsumeTrainingPaymentOTPInput) error
	ConsumeTrainingRegistrationConfirmed(ctx context.Context, in usecase.ConsumeTrainingRegistrationConfirmedInput) error
}

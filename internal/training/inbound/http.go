package inbound

import (
	"context"

	"github.com/shandysiswandi/skillbridge/internal/pkg/router"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"github.com/shandysiswandi/skillbridge/internal/training/usecase"
)

type uc interface {
	TrainingList(ctx context.Context, in usecase.TrainingListInput) (*usecase.TrainingListOutput, error)
	TrainingDetail(ctx context.Context, id int64) (*entity.Training, error)
	MyRegistrations(ctx context.Context) ([]usecase.MyRegistration, error)

	SendPaymentOTP(ctx context.Context, in usecase.SendPaymentOTPInput) (*usecase.SendPaymentOTPOutput, error)
	VerifyPaymentOTP(ctx context.Context, in usecase.VerifyPaymentOTPInput) (*usecase.VerifyPaymentOTPOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Catalog (public)
	r.GET("/api/v1/trainings", end.TrainingList, router.Public())
	r.GET("/api/v1/trainings/:id", end.TrainingDetail, router.Public())

	// Payment confirmation (need authenticated)
	r.POST("/api/v1/trainings/send-payment-otp", end.SendPaymentOTP)
	r.POST("/api/v1/trainings/verify-payment-otp", end.VerifyPaymentOTP)

	// Registrations (need authenticated)
	r.GET("/api/v1/training-registrations/me", end.MyRegistrations)
}

package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/skillbridge/internal/notification/usecase"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/messaging"
	"github.com/shandysiswandi/skillbridge/internal/pkg/uid"
	"github.com/shandysiswandi/skillbridge/internal/shared/event"
)

// MQHandler acks every message it has seen. Delivery is a single attempt;
// a new code is requested by the user, not by redelivery.
type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

// withMessageContext restores the publisher's correlation id and trace
// context, generating a correlation id when the message has none.
func (h *MQHandler) withMessageContext(ctx context.Context, msg messaging.Message) context.Context {
	ctx = messaging.ExtractTrace(ctx, msg)
	if cID := msg.Header(messaging.HeaderCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) TrainingPaymentOTPNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.withMessageContext(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "TrainingPaymentOTPNotification")
	defer span.End()

	// The body carries the plaintext code and is never logged.
	var payload event.TrainingPaymentOTPMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of training payment otp", "msg_id", msg.ID(), "error", err)
		return nil
	}
	slog.InfoContext(ctx, "consume: training payment otp", "challenge_id", payload.ChallengeID, "training_id", payload.TrainingID, "attempts", msg.Attempts())

	if err := h.uc.ConsumeTrainingPaymentOTP(ctx, usecase.ConsumeTrainingPaymentOTPInput{
		ChallengeID:      payload.ChallengeID,
		UserID:           payload.UserID,
		Email:            payload.Email,
		FullName:         payload.FullName,
		TrainingID:       payload.TrainingID,
		TrainingTitle:    payload.TrainingTitle,
		Code:             payload.Code,
		ExpiresAt:        payload.ExpiresAt,
		ExpiresInMinutes: payload.ExpiresInMinutes,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume training payment otp", "challenge_id", payload.ChallengeID, "error", err)
	}

	return nil
}

func (h *MQHandler) TrainingRegistrationConfirmedNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.withMessageContext(ctx, msg)

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "TrainingRegistrationConfirmedNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: training registration confirmed", "msg_body", string(body))

	var payload event.TrainingRegistrationConfirmedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of training registration confirmed", "msg_body", string(body), "error", err)
		return nil
	}

	if err := h.uc.ConsumeTrainingRegistrationConfirmed(ctx, usecase.ConsumeTrainingRegistrationConfirmedInput{
		RegistrationID:        payload.RegistrationID,
		UserID:                payload.UserID,
		Email:                 payload.Email,
		FullName:              payload.FullName,
		TrainingID:            payload.TrainingID,
		TrainingTitle:         payload.TrainingTitle,
		FinalizationReference: payload.FinalizationReference,
		ReceiptURL:            payload.ReceiptURL,
		Amount:                payload.Amount,
		Currency:              payload.Currency,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume training registration confirmed", "registration_id", payload.RegistrationID, "error", err)
	}

	return nil
}

package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/messaging"
	"github.com/shandysiswandi/skillbridge/internal/shared/event"
	"github.com/shandysiswandi/skillbridge/internal/training/usecase"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Messaging struct {
	client messaging.Messaging
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishPaymentOTP(ctx context.Context, msg usecase.PaymentOTPEvent) error {
	ctx, span := m.ins.Tracer("training.outbound.mq").Start(ctx, "PublishPaymentOTP")
	defer span.End()

	return m.publish(ctx, span, event.TrainingPaymentOTPDestination, event.TrainingPaymentOTPMessage{
		ChallengeID:      msg.ChallengeID,
		UserID:           msg.UserID,
		Email:            msg.Email,
		FullName:         msg.FullName,
		TrainingID:       msg.TrainingID,
		TrainingTitle:    msg.TrainingTitle,
		Code:             msg.Code,
		ExpiresAt:        msg.ExpiresAt,
		ExpiresInMinutes: int(msg.TTL.Minutes()),
	})
}

func (m *Messaging) PublishRegistrationConfirmed(ctx context.Context, msg usecase.RegistrationConfirmedEvent) error {
	ctx, span := m.ins.Tracer("training.outbound.mq").Start(ctx, "PublishRegistrationConfirmed")
	defer span.End()

	return m.publish(ctx, span, event.TrainingRegistrationConfirmedDestination, event.TrainingRegistrationConfirmedMessage{
		RegistrationID:        msg.RegistrationID,
		UserID:                msg.UserID,
		Email:                 msg.Email,
		FullName:              msg.FullName,
		TrainingID:            msg.TrainingID,
		TrainingTitle:         msg.TrainingTitle,
		FinalizationReference: msg.FinalizationReference,
		ReceiptURL:            msg.ReceiptURL,
		Amount:                msg.Amount,
		Currency:              msg.Currency,
	})
}

func (m *Messaging) publish(ctx context.Context, span trace.Span, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	headers := messaging.InjectTrace(ctx, nil)
	if cID := instrument.GetCorrelationID(ctx); cID != "" {
		headers[messaging.HeaderCorrelationID] = cID
	}

	if _, err := m.client.Publish(ctx, topic, messaging.OutgoingMessage{Body: body, Headers: headers}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

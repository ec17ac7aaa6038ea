package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/skillbridge/internal/notification/entity"
	"github.com/shandysiswandi/skillbridge/internal/pkg/valueobject"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type deliverInput struct {
	TriggerKey  entity.TriggerKey
	Recipient   string
	ReferenceID string
	Subject     string
	Data        map[string]any
}

// deliver sends one email and records the attempt. The log keeps the
// recipient and reference only; rendered content never reaches storage.
func (s *Usecase) deliver(ctx context.Context, in deliverInput) error {
	msg, err := s.render(ctx, in.TriggerKey, in.Subject, in.Data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render notification", "trigger_key", in.TriggerKey.String(), "error", err)
		return err
	}

	logID := s.uid.Generate()
	logged := true
	if err := s.repoDB.CreateDeliveryLog(ctx, entity.CreateDeliveryLog{
		ID:          logID,
		TriggerKey:  in.TriggerKey,
		Channel:     entity.ChannelEmail,
		Recipient:   in.Recipient,
		ReferenceID: in.ReferenceID,
		Status:      entity.DeliveryStatusQueued,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "trigger_key", in.TriggerKey.String(), "error", err)
		logged = false
	}

	mailErr := s.repoMail.Send(ctx, in.Recipient, msg)

	status := entity.DeliveryStatusSent
	resp := valueobject.JSONMap{}
	if mailErr != nil {
		status = entity.DeliveryStatusFailed
		resp["error"] = mailErr.Error()
	}
	s.delivered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger_key", in.TriggerKey.String()),
		attribute.String("status", status.String()),
	))

	if logged {
		if err := s.repoDB.UpdateDeliveryLogStatus(ctx, entity.UpdateDeliveryLog{
			ID:               logID,
			Status:           status,
			ProviderResponse: resp,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to repo update delivery log status", "log_id", logID, "error", err)
		}
	}

	if mailErr != nil {
		slog.ErrorContext(ctx, "failed to send notification email", "log_id", logID, "trigger_key", in.TriggerKey.String(), "error", mailErr)
		return mailErr
	}

	slog.InfoContext(ctx, "notification email sent", "log_id", logID, "trigger_key", in.TriggerKey.String())
	return nil
}

// skip records a message that was dropped before sending.
func (s *Usecase) skip(ctx context.Context, in deliverInput, reason string) {
	if err := s.repoDB.CreateDeliveryLog(ctx, entity.CreateDeliveryLog{
		ID:          s.uid.Generate(),
		TriggerKey:  in.TriggerKey,
		Channel:     entity.ChannelEmail,
		Recipient:   in.Recipient,
		ReferenceID: in.ReferenceID,
		Status:      entity.DeliveryStatusSkipped,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "trigger_key", in.TriggerKey.String(), "error", err)
	}

	s.delivered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger_key", in.TriggerKey.String()),
		attribute.String("status", entity.DeliveryStatusSkipped.String()),
	))
	slog.WarnContext(ctx, "notification skipped", "trigger_key", in.TriggerKey.String(), "reason", reason)
}

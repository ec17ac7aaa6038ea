package email

import (
	"context"

	"github.com/shandysiswandi/skillbridge/internal/notification/entity"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Email struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Email {
	return &Email{client: client, ins: ins}
}

// Send delivers one rendered message to a single recipient.
func (e *Email) Send(ctx context.Context, to string, msg entity.RenderedMessage) error {
	ctx, span := e.ins.Tracer("notification.outbound.email").Start(ctx, "Send",
		trace.WithAttributes(attribute.String("notification.trigger_key", msg.TriggerKey.String())))
	defer span.End()

	if err := e.client.Send(ctx, mail.Message{
		To:       []string{to},
		Subject:  msg.Subject,
		TextBody: msg.Text,
		HTMLBody: msg.HTML,
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

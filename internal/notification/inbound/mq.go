package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/skillbridge/internal/pkg/config"
	"github.com/shandysiswandi/skillbridge/internal/pkg/goroutine"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/messaging"
	"github.com/shandysiswandi/skillbridge/internal/pkg/uid"
	"github.com/shandysiswandi/skillbridge/internal/shared/event"
)

type consumer struct {
	name    string
	topic   string
	group   string // nsq channel, nats queue group
	handler messaging.Handler
}

func consumers(h *MQHandler) []consumer {
	return []consumer{
		{
			name:    event.TrainingPaymentOTPConsumerNotification,
			topic:   event.TrainingPaymentOTPDestination,
			group:   event.TrainingPaymentOTPConsumerNotification,
			handler: h.TrainingPaymentOTPNotification,
		},
		{
			name:    event.TrainingRegistrationConfirmedConsumerNotification,
			topic:   event.TrainingRegistrationConfirmedDestination,
			group:   event.TrainingRegistrationConfirmedConsumerNotification,
			handler: h.TrainingRegistrationConfirmedNotification,
		},
	}
}

// RegisterMQConsumer starts one goroutine per consumer listed in
// modules.notification.consumer_names.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	consumer messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	h := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enabled := cfg.GetArray("modules.notification.consumer_names")
	concurrency := max(cfg.GetInt("modules.notification.concurrency"), 1)

	for _, c := range consumers(h) {
		if !slices.Contains(enabled, c.name) {
			continue
		}

		err := routine.Go(ctx, c.name, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", c.name)
			return consumer.Consume(pCtx,
				c.topic,
				c.handler,
				messaging.WithChannel(c.group),
				messaging.WithQueueGroup(c.group),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(concurrency),
				messaging.WithMaxInFlight(concurrency),
			)
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to start consumer", "consumer", c.name, "error", err)
		}
	}
}

package db

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/skillbridge/internal/notification/entity"
	"github.com/shandysiswandi/skillbridge/internal/pkg/sqlc"
	"github.com/shandysiswandi/skillbridge/internal/pkg/valueobject"
)

func (s *DB) CreateDeliveryLog(ctx context.Context, dl entity.CreateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDeliveryLog")
	defer func() { s.endSpan(span, err) }()

	err = s.query.CreateNotificationDeliveryLog(ctx, sqlc.CreateNotificationDeliveryLogParams{
		ID:               dl.ID,
		TriggerKey:       dl.TriggerKey.String(),
		Channel:          int16(dl.Channel),
		Recipient:        dl.Recipient,
		ReferenceID:      dl.ReferenceID,
		Status:           int16(dl.Status),
		ProviderResponse: valueobject.JSONMap{},
	})
	return s.mapError(err)
}

func (s *DB) UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryLogStatus")
	defer func() { s.endSpan(span, err) }()

	if !u.Status.Final() {
		return fmt.Errorf("notification: %s is not a final delivery status", u.Status)
	}

	err = s.query.UpdateNotificationDeliveryLogStatus(ctx, sqlc.UpdateNotificationDeliveryLogStatusParams{
		Status:           int16(u.Status),
		ProviderResponse: u.ProviderResponse,
		ID:               u.ID,
	})
	return s.mapError(err)
}

package db

import (
	"context"

	"github.com/shandysiswandi/skillbridge/internal/notification/entity"
	"github.com/shandysiswandi/skillbridge/internal/pkg/sqlc"
)

func (s *DB) GetTemplateByTriggerChannel(ctx context.Context, tk entity.TriggerKey, ch entity.Channel) (_ *entity.Template, err error) {
	ctx, span := s.startSpan(ctx, "GetTemplateByTriggerChannel")
	defer func() { s.endSpan(span, err) }()

	row, err := s.query.GetNotificationTemplateByTriggerChannel(ctx, sqlc.GetNotificationTemplateByTriggerChannelParams{
		TriggerKey: tk.String(),
		Channel:    int16(ch),
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return &entity.Template{
		ID:         row.ID,
		TriggerKey: entity.TriggerKey(row.TriggerKey),
		Channel:    entity.Channel(row.Channel),
		Subject:    row.Subject,
		Body:       row.Body,
	}, nil
}

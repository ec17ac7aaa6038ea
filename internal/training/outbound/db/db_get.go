package db

import (
	"context"

	"github.com/shandysiswandi/skillbridge/internal/pkg/sqlc"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
)

func toTraining(row sqlc.Training) entity.Training {
	return entity.Training{
		ID:          row.ID,
		Title:       row.Title,
		TrainerName: row.TrainerName,
		Description: row.Description,
		Mode:        entity.TrainingMode(row.Mode),
		Location:    row.Location,
		StartsAt:    row.StartsAt,
		EndsAt:      row.EndsAt,
		PriceAmount: row.PriceAmount,
		Currency:    row.Currency,
		Capacity:    row.Capacity,
		Booked:      row.Booked,
		Status:      entity.TrainingStatus(row.Status),
	}
}

func (s *DB) GetTraining(ctx context.Context, id int64) (_ *entity.Training, err error) {
	ctx, span := s.startSpan(ctx, "GetTraining")
	defer func() { s.endSpan(span, err) }()

	row, err := s.query.GetTrainingByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err)
	}

	t := toTraining(row)
	return &t, nil
}

func (s *DB) ListOpenTrainings(ctx context.Context, f entity.TrainingListFilter) (_ []entity.Training, err error) {
	ctx, span := s.startSpan(ctx, "ListOpenTrainings")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.query.ListOpenTrainings(ctx, sqlc.ListOpenTrainingsParams{
		Status:           int16(entity.TrainingStatusOpen),
		IsFilterBySearch: f.IsFilterBySearch,
		Search:           f.Search,
		PageLimit:        f.Size,
		PageOffset:       f.Offset,
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	out := make([]entity.Training, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTraining(row))
	}

	return out, nil
}

func (s *DB) CountOpenTrainings(ctx context.Context, f entity.TrainingListFilter) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountOpenTrainings")
	defer func() { s.endSpan(span, err) }()

	total, err := s.query.CountOpenTrainings(ctx, sqlc.CountOpenTrainingsParams{
		Status:           int16(entity.TrainingStatusOpen),
		IsFilterBySearch: f.IsFilterBySearch,
		Search:           f.Search,
	})
	if err != nil {
		return 0, s.mapError(err)
	}

	return total, nil
}

func (s *DB) IsRegistered(ctx context.Context, trainingID, userID int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "IsRegistered")
	defer func() { s.endSpan(span, err) }()

	exists, err := s.query.ExistsTrainingRegistration(ctx, sqlc.ExistsTrainingRegistrationParams{
		TrainingID: trainingID,
		UserID:     userID,
	})
	if err != nil {
		return false, s.mapError(err)
	}

	return exists, nil
}

func (s *DB) ListRegistrationsByUser(ctx context.Context, userID int64) (_ []entity.RegistrationSummary, err error) {
	ctx, span := s.startSpan(ctx, "ListRegistrationsByUser")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.query.ListTrainingRegistrationsByUser(ctx, userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	out := make([]entity.RegistrationSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.RegistrationSummary{
			ID:               row.ID,
			TrainingID:       row.TrainingID,
			TrainingTitle:    row.TrainingTitle,
			TrainingStartsAt: row.TrainingStartsAt,
			FullName:         row.FullName,
			Status:           entity.RegistrationStatus(row.Status),
			ReceiptKey:       row.ReceiptKey,
			PaymentReference: row.PaymentReference,
			Amount:           row.Amount,
			Currency:         row.Currency,
			Method:           entity.PaymentMethod(row.Method),
			CreatedAt:        row.CreatedAt,
		})
	}

	return out, nil
}

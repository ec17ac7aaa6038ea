package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/pkg/sqlc"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
)

// FinalizeRegistration books a seat, records the registration and its payment
// in one transaction. It returns goerror.ErrConflict when the training can no
// longer be booked or the user is already registered.
func (s *DB) FinalizeRegistration(ctx context.Context, reg entity.Registration) (_ *entity.Training, err error) {
	ctx, span := s.startSpan(ctx, "FinalizeRegistration")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	wtx := s.query.WithTx(tx)

	row, err := wtx.GetTrainingByIDForUpdate(ctx, reg.TrainingID)
	if err != nil {
		return nil, s.mapError(err)
	}
	training := toTraining(row)
	if !training.Bookable() || !training.Charges(reg.Payment) {
		return nil, goerror.ErrConflict
	}

	if err := wtx.CreateTrainingRegistration(ctx, sqlc.CreateTrainingRegistrationParams{
		ID:           reg.ID,
		TrainingID:   reg.TrainingID,
		UserID:       reg.UserID,
		Email:        reg.Email,
		FullName:     reg.Data.FullName,
		Phone:        reg.Data.Phone,
		Organization: reg.Data.Organization,
		Notes:        reg.Data.Notes,
		ChallengeID:  reg.ChallengeID,
		Status:       int16(reg.Status),
		CreatedAt:    reg.CreatedAt,
	}); err != nil {
		return nil, s.mapError(err)
	}

	if err := wtx.CreateTrainingPayment(ctx, sqlc.CreateTrainingPaymentParams{
		ID:             reg.PaymentID,
		RegistrationID: reg.ID,
		Reference:      reg.PaymentReference,
		Method:         int16(reg.Payment.Method),
		Amount:         reg.Payment.Amount,
		Currency:       reg.Payment.Currency,
		PayerName:      reg.Payment.PayerName,
		CardLastFour:   reg.Payment.CardLastFour,
		PaidAt:         reg.CreatedAt,
	}); err != nil {
		return nil, s.mapError(err)
	}

	affected, err := wtx.IncrementTrainingBooked(ctx, reg.TrainingID)
	if err != nil {
		return nil, s.mapError(err)
	}
	if affected == 0 {
		return nil, goerror.ErrConflict
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, s.mapError(err)
	}

	training.Booked++
	return &training, nil
}

func (s *DB) SetReceiptKey(ctx context.Context, registrationID int64, key string) (err error) {
	ctx, span := s.startSpan(ctx, "SetReceiptKey")
	defer func() { s.endSpan(span, err) }()

	err = s.mapError(s.query.UpdateTrainingRegistrationReceipt(ctx, sqlc.UpdateTrainingRegistrationReceiptParams{
		ReceiptKey: key,
		ID:         registrationID,
	}))
	return err
}

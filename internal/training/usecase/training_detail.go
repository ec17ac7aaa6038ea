package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
)

func (s *Usecase) TrainingDetail(ctx context.Context, id int64) (*entity.Training, error) {
	ctx, span := s.startSpan(ctx, "TrainingDetail")
	defer span.End()

	if id <= 0 {
		return nil, goerror.NewBusiness("Training not found", goerror.CodeNotFound)
	}

	training, err := s.repoDB.GetTraining(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Training not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get training", "training_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}

	return training, nil
}

package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
)

type TrainingListInput struct {
	Search string
	Size   int32
	Page   int32
}

type TrainingListOutput struct {
	Page      int32
	Size      int32
	Total     int64
	Trainings []entity.Training
}

func (s *Usecase) TrainingList(ctx context.Context, in TrainingListInput) (*TrainingListOutput, error) {
	ctx, span := s.startSpan(ctx, "TrainingList")
	defer span.End()

	if in.Size <= 0 || in.Size > 100 {
		in.Size = 10
	}
	filter := entity.TrainingListFilter{
		Search: strings.TrimSpace(in.Search),
		Size:   in.Size,
		Offset: (max(in.Page, 1) - 1) * in.Size,
	}
	filter.IsFilterBySearch = filter.Search != ""

	trainings, err := s.repoDB.ListOpenTrainings(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list trainings", "error", err)
		return nil, goerror.NewServer(err)
	}

	total, err := s.repoDB.CountOpenTrainings(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count trainings", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &TrainingListOutput{
		Page:      max(in.Page, 1),
		Size:      in.Size,
		Total:     total,
		Trainings: trainings,
	}, nil
}

package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
)

type MyRegistration struct {
	entity.RegistrationSummary
	ReceiptURL string
}

func (s *Usecase) MyRegistrations(ctx context.Context) ([]MyRegistration, error) {
	ctx, span := s.startSpan(ctx, "MyRegistrations")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	regs, err := s.repoDB.ListRegistrationsByUser(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list registrations", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	out := make([]MyRegistration, 0, len(regs))
	for _, reg := range regs {
		item := MyRegistration{RegistrationSummary: reg}
		if reg.ReceiptKey != "" && s.repoReceipt != nil {
			url, err := s.repoReceipt.URL(ctx, reg.ReceiptKey, s.receiptTTL())
			if err != nil {
				slog.WarnContext(ctx, "failed to presign receipt", "registration_id", reg.ID, "error", err)
			}
			item.ReceiptURL = url
		}
		out = append(out, item)
	}

	return out, nil
}

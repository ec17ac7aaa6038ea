package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
)

func TestTrainingList(t *testing.T) {
	// Arrange
	h := newHarness(t)

	// Act
	out, err := h.uc.TrainingList(context.Background(), TrainingListInput{Size: 500, Page: 0})

	// Assert
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if out.Size != 10 || out.Page != 1 {
		t.Fatalf("paging defaults = %d/%d", out.Page, out.Size)
	}
	if out.Total != 1 || len(out.Trainings) != 1 || out.Trainings[0].ID != 1001 {
		t.Fatalf("only open trainings are listed: %+v", out)
	}
}

func TestTrainingDetail(t *testing.T) {
	// Arrange
	h := newHarness(t)

	// Act
	found, foundErr := h.uc.TrainingDetail(context.Background(), 1003)
	_, missingErr := h.uc.TrainingDetail(context.Background(), 42)

	// Assert
	if foundErr != nil || found.Status != entity.TrainingStatusClosed {
		t.Fatalf("detail = %+v, %v", found, foundErr)
	}
	var gerr *goerror.Error
	if !errors.As(missingErr, &gerr) || gerr.Code() != goerror.CodeNotFound {
		t.Fatalf("missing = %v", missingErr)
	}
}

func TestMyRegistrations(t *testing.T) {
	// Arrange
	h := newHarness(t)
	h.db.registrations = []entity.RegistrationSummary{
		{ID: 1, TrainingID: 1001, ReceiptKey: "receipts/1001/1.json"},
		{ID: 2, TrainingID: 1002},
	}

	// Act
	out, err := h.uc.MyRegistrations(authed())
	_, unauth := h.uc.MyRegistrations(context.Background())

	// Assert
	if err != nil || len(out) != 2 {
		t.Fatalf("registrations = %+v, %v", out, err)
	}
	if out[0].ReceiptURL == "" || out[1].ReceiptURL != "" {
		t.Fatalf("receipt urls = %q, %q", out[0].ReceiptURL, out[1].ReceiptURL)
	}
	var gerr *goerror.Error
	if !errors.As(unauth, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
		t.Fatalf("unauthenticated = %v", unauth)
	}
}

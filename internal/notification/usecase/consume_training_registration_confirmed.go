package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/shandysiswandi/skillbridge/internal/notification/entity"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type ConsumeTrainingRegistrationConfirmedInput struct {
	RegistrationID        int64  `validate:"required,gt=0"`
	UserID                int64  `validate:"required,gt=0"`
	Email                 string `validate:"required,email"`
	FullName              string `validate:"required,max=120"`
	TrainingID            int64  `validate:"required,gt=0"`
	TrainingTitle         string `validate:"required"`
	FinalizationReference string `validate:"required"`
	ReceiptURL            string `validate:"omitempty,url"`
	Amount                int64  `validate:"gte=0"`
	Currency              string `validate:"required,len=3"`
}

func (s *Usecase) ConsumeTrainingRegistrationConfirmed(ctx context.Context, in ConsumeTrainingRegistrationConfirmedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeTrainingRegistrationConfirmed")
	defer span.End()

	di := deliverInput{
		TriggerKey:  entity.TriggerKeyRegistrationConfirmed,
		Recipient:   in.Email,
		ReferenceID: strconv.FormatInt(in.RegistrationID, 10),
	}

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "registration_id", in.RegistrationID, "error", err)
		s.skip(ctx, di, "invalid payload")
		return nil
	}

	di.Data = s.baseTemplateData()
	di.Data["full_name"] = in.FullName
	di.Data["training_title"] = in.TrainingTitle
	di.Data["finalization_reference"] = in.FinalizationReference
	di.Data["receipt_url"] = in.ReceiptURL
	di.Data["amount"] = formatAmount(in.Amount, in.Currency)

	return s.deliver(ctx, di)
}

// formatAmount renders minor units as a grouped decimal with the ISO code,
// e.g. 150000000 IDR as "IDR 1,500,000.00".
func formatAmount(amount int64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%s %d", code, amount)
	}

	scale, _ := currency.Standard.Rounding(unit)
	p := message.NewPrinter(language.English)
	return p.Sprintf(fmt.Sprintf("%%s %%.%df", scale), unit.String(), float64(amount)/math.Pow10(scale))
}

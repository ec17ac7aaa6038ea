// Package receipt keeps payment receipts as JSON documents in object storage.
package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/storage"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Receipt struct {
	store storage.Storage
	ins   instrument.Instrumentation
}

func NewReceipt(store storage.Storage, ins instrument.Instrumentation) *Receipt {
	return &Receipt{store: store, ins: ins}
}

func Key(trainingID, registrationID int64) string {
	return fmt.Sprintf("receipts/%d/%d.json", trainingID, registrationID)
}

func (r *Receipt) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.ins.Tracer("training.outbound.receipt").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Store uploads the receipt and returns its object key.
func (r *Receipt) Store(ctx context.Context, rc entity.Receipt) (_ string, err error) {
	ctx, span := r.startSpan(ctx, "Store")
	defer func() { endSpan(span, err) }()

	body, err := json.MarshalIndent(rc, "", "  ")
	if err != nil {
		return "", err
	}

	key := Key(rc.TrainingID, rc.RegistrationID)
	if _, err = r.store.PutObject(ctx, key, bytes.NewReader(body), storage.PutOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"payment-reference": rc.PaymentReference,
			"registration-id":   strconv.FormatInt(rc.RegistrationID, 10),
		},
	}); err != nil {
		return "", err
	}

	return key, nil
}

// URL presigns a download link for an existing receipt.
func (r *Receipt) URL(ctx context.Context, key string, expiry time.Duration) (_ string, err error) {
	ctx, span := r.startSpan(ctx, "URL")
	defer func() { endSpan(span, err) }()

	if _, err = r.store.StatObject(ctx, key); err != nil {
		return "", err
	}

	return r.store.PresignGet(ctx, key, expiry)
}

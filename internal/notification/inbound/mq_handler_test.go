package inbound

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/notification/usecase"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/pkg/messaging"
)

type fakeMessage struct {
	body    []byte
	headers map[string]string
}

func (m fakeMessage) Body() []byte               { return m.body }
func (m fakeMessage) Header(key string) string   { return m.headers[key] }
func (m fakeMessage) Headers() map[string]string { return m.headers }
func (m fakeMessage) ID() string                 { return "msg-1" }
func (m fakeMessage) Source() string             { return "" }
func (m fakeMessage) Attempts() int              { return 1 }
func (m fakeMessage) Timestamp() time.Time       { return time.Time{} }
func (m fakeMessage) Ack(context.Context) error  { return nil }
func (m fakeMessage) Nack(context.Context) error { return nil }

type fakeUC struct {
	otp       []usecase.ConsumeTrainingPaymentOTPInput
	confirmed []usecase.ConsumeTrainingRegistrationConfirmedInput
	cIDs      []string
	err       error
}

func (f *fakeUC) ConsumeTrainingPaymentOTP(ctx context.Context, in usecase.ConsumeTrainingPaymentOTPInput) error {
	f.otp = append(f.otp, in)
	f.cIDs = append(f.cIDs, instrument.GetCorrelationID(ctx))
	return f.err
}

func (f *fakeUC) ConsumeTrainingRegistrationConfirmed(ctx context.Context, in usecase.ConsumeTrainingRegistrationConfirmedInput) error {
	f.confirmed = append(f.confirmed, in)
	f.cIDs = append(f.cIDs, instrument.GetCorrelationID(ctx))
	return f.err
}

type fixedUUID string

func (u fixedUUID) Generate() string { return string(u) }

func TestTrainingPaymentOTPNotification(t *testing.T) {
	// Arrange
	uc := &fakeUC{}
	h := &MQHandler{uc: uc, uuid: fixedUUID("generated"), ins: instrument.NewNoop()}
	msg := fakeMessage{
		body:    []byte(`{"challenge_id":777,"user_id":7,"email":"fresher@example.com","full_name":"Ayu","training_id":1001,"training_title":"Go","code":"123456","expires_at":"2026-10-01T09:05:00Z","expires_in_minutes":5}`),
		headers: map[string]string{messaging.HeaderCorrelationID: "cid-1"},
	}

	// Act
	err := h.TrainingPaymentOTPNotification(context.Background(), msg)

	// Assert
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(uc.otp) != 1 || uc.otp[0].ChallengeID != 777 || uc.otp[0].Code != "123456" || uc.otp[0].ExpiresInMinutes != 5 {
		t.Fatalf("input = %+v", uc.otp)
	}
	if uc.cIDs[0] != "cid-1" {
		t.Fatalf("correlation id = %q", uc.cIDs[0])
	}
}

func TestHandlersAckOnFailure(t *testing.T) {
	// Arrange
	uc := &fakeUC{err: errors.New("smtp down")}
	h := &MQHandler{uc: uc, uuid: fixedUUID("generated"), ins: instrument.NewNoop()}

	// Act
	badBody := h.TrainingPaymentOTPNotification(context.Background(), fakeMessage{body: []byte("{")})
	failed := h.TrainingRegistrationConfirmedNotification(context.Background(), fakeMessage{
		body: []byte(`{"registration_id":42,"email":"fresher@example.com","finalization_reference":"TRN-42","amount":1,"currency":"IDR"}`),
	})

	// Assert
	if badBody != nil || failed != nil {
		t.Fatalf("handlers must ack: %v %v", badBody, failed)
	}
	if len(uc.otp) != 0 || len(uc.confirmed) != 1 || uc.confirmed[0].FinalizationReference != "TRN-42" {
		t.Fatalf("otp %d confirmed %+v", len(uc.otp), uc.confirmed)
	}
	if uc.cIDs[0] != "generated" {
		t.Fatalf("correlation id = %q", uc.cIDs[0])
	}
}

func TestConsumersCoverBothTopics(t *testing.T) {
	cs := consumers(&MQHandler{})
	if len(cs) != 2 {
		t.Fatalf("consumers = %d", len(cs))
	}
	for _, c := range cs {
		if c.topic == "" || c.group == "" || c.handler == nil {
			t.Fatalf("incomplete consumer %+v", c.name)
		}
	}
}

package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
)

func TestChallengeExpiredAtBoundary(t *testing.T) {
	issued := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	c := Challenge{IssuedAt: issued, ExpiresAt: issued.Add(300 * time.Second)}

	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{name: "inside window", offset: 299 * time.Second, want: false},
		{name: "exact expiry instant", offset: 300 * time.Second, want: false},
		{name: "after window", offset: 301 * time.Second, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := c.ExpiredAt(issued.Add(tt.offset))

			// Assert
			if got != tt.want {
				t.Fatalf("ExpiredAt = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrainingBookable(t *testing.T) {
	tests := []struct {
		name string
		tr   Training
		want bool
	}{
		{name: "open with seats", tr: Training{Status: TrainingStatusOpen, Capacity: 2, Booked: 1}, want: true},
		{name: "open but full", tr: Training{Status: TrainingStatusOpen, Capacity: 2, Booked: 2}, want: false},
		{name: "closed", tr: Training{Status: TrainingStatusClosed, Capacity: 2}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Bookable(); got != tt.want {
				t.Fatalf("Bookable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransactionContextCanonicalIsStable(t *testing.T) {
	// Arrange
	tc := TransactionContext{
		TrainingID:   7,
		Registration: RegistrationData{FullName: "Dewi Lestari", Phone: "+628123456789"},
		Payment:      PaymentDetails{Method: PaymentMethodUPI, Amount: 1500, Currency: "IDR", PayerName: "Dewi Lestari"},
	}

	// Act
	a, errA := tc.Canonical()
	b, errB := tc.Canonical()

	// Assert
	if errA != nil || errB != nil {
		t.Fatalf("canonical: %v %v", errA, errB)
	}
	if string(a) != string(b) {
		t.Fatalf("canonical form must be stable")
	}
	want := `{"training_id":7,"registration":{"full_name":"Dewi Lestari","phone":"+628123456789","organization":"","notes":""},"payment":{"method":"upi","amount":1500,"currency":"IDR","payer_name":"Dewi Lestari","card_last_four":""}}`
	if string(a) != want {
		t.Fatalf("canonical = %s", a)
	}
}

func TestReasonErrorsUnwrapToSentinel(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		reason   string
		status   int
	}{
		{err: NewErrExpired(), sentinel: ErrChallengeExpired, reason: ReasonExpired, status: 410},
		{err: NewErrInvalidCode(), sentinel: ErrInvalidCode, reason: ReasonInvalidCode, status: 422},
		{err: NewErrAlreadyConsumed(), sentinel: ErrAlreadyConsumed, reason: ReasonAlreadyConsumed, status: 409},
		{err: NewErrDeliveryFailed(), sentinel: ErrDeliveryFailed, reason: ReasonDeliveryFailed, status: 502},
		{err: NewErrNoActiveChallenge(), sentinel: ErrNoActiveChallenge, reason: ReasonNoActiveChallenge, status: 404},
		{err: NewErrInvalidInput(errors.New("code")), sentinel: ErrInvalidInput, reason: ReasonInvalidInput, status: 422},
	}

	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Fatalf("error does not unwrap to sentinel")
			}
			if got := goerror.Reason(tt.err); got != tt.reason {
				t.Fatalf("reason = %q, want %q", got, tt.reason)
			}
			if SentinelFromReason(tt.reason) != tt.sentinel {
				t.Fatalf("reverse mapping mismatch")
			}
			var gerr *goerror.Error
			if !errors.As(tt.err, &gerr) || gerr.StatusCode() != tt.status {
				t.Fatalf("status mismatch for %v", tt.err)
			}
		})
	}
}

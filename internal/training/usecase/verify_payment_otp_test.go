package usecase

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/pkg/goerror"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
)

func sent(t *testing.T, codes ...string) *harness {
	t.Helper()
	h := newHarness(t, codes...)
	if _, err := h.uc.SendPaymentOTP(authed(), sendInput()); err != nil {
		t.Fatalf("send: %v", err)
	}
	return h
}

func verify(h *harness, code string) (*VerifyPaymentOTPOutput, error) {
	return h.uc.VerifyPaymentOTP(authed(), VerifyPaymentOTPInput{TrainingID: 1001, Code: code})
}

func TestVerifyPaymentOTPExpiryBoundary(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   error
	}{
		{name: "just before expiry", offset: 299 * time.Second},
		{name: "at expiry", offset: 300 * time.Second},
		{name: "after expiry", offset: 301 * time.Second, want: entity.ErrChallengeExpired},
		{name: "after retention", offset: 901 * time.Second, want: entity.ErrNoActiveChallenge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := sent(t, "123456")
			h.at(tt.offset)

			// Act
			_, err := verify(h, "123456")

			// Assert
			if tt.want == nil && err != nil {
				t.Fatalf("verify: %v", err)
			}
			if tt.want != nil {
				assertIs(t, err, tt.want)
			}
		})
	}
}

func TestVerifyPaymentOTPFinalizesFromStoredContext(t *testing.T) {
	// Arrange
	h := sent(t, "123456")
	h.at(20 * time.Second)

	// Act
	out, err := verify(h, "123456")

	// Assert
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(h.db.finalized) != 1 {
		t.Fatalf("finalized %d registrations", len(h.db.finalized))
	}
	reg := h.db.finalized[0]
	if reg.Payment.Currency != "IDR" || reg.Payment.CardLastFour != "4242" || reg.Email != "fresher@example.com" {
		t.Fatalf("registration = %+v", reg)
	}
	if out.RegistrationID != reg.ID || !strings.HasPrefix(out.PaymentReference, "TRN-") {
		t.Fatalf("output = %+v", out)
	}
	if out.ReceiptURL == "" || out.FinalizationReference != out.ReceiptURL {
		t.Fatalf("receipt url must be the finalization reference: %+v", out)
	}
	if h.db.receiptKeys[reg.ID] == "" {
		t.Fatalf("receipt key not recorded")
	}
	if len(h.mq.confirmed) != 1 || h.mq.confirmed[0].FinalizationReference != reg.PaymentReference {
		t.Fatalf("confirmation events = %+v", h.mq.confirmed)
	}
}

func TestVerifyPaymentOTPWithoutReceipt(t *testing.T) {
	// Arrange
	h := sent(t, "123456")
	h.receipt.err = errors.New("bucket offline")

	// Act
	out, err := verify(h, "123456")

	// Assert
	if err != nil {
		t.Fatalf("receipt failure must not fail verification: %v", err)
	}
	if out.ReceiptURL != "" || out.FinalizationReference != out.PaymentReference {
		t.Fatalf("output = %+v", out)
	}
}

func TestVerifyPaymentOTPWrongThenRight(t *testing.T) {
	// Arrange
	h := sent(t, "123456")

	// Act
	h.at(10 * time.Second)
	_, wrongErr := verify(h, "654321")
	h.at(20 * time.Second)
	_, rightErr := verify(h, "123456")

	// Assert
	assertIs(t, wrongErr, entity.ErrInvalidCode)
	if rightErr != nil {
		t.Fatalf("correct code after a wrong one: %v", rightErr)
	}
}

func TestVerifyPaymentOTPDoubleSubmit(t *testing.T) {
	// Arrange
	h := sent(t, "123456")

	// Act
	_, first := verify(h, "123456")
	_, second := verify(h, "123456")

	// Assert
	if first != nil {
		t.Fatalf("first verify: %v", first)
	}
	assertIs(t, second, entity.ErrAlreadyConsumed)
	if len(h.db.finalized) != 1 {
		t.Fatalf("finalized %d times", len(h.db.finalized))
	}
}

func TestVerifyPaymentOTPConcurrentSubmits(t *testing.T) {
	// Arrange
	h := sent(t, "123456")
	const n = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		consumed  int
	)

	// Act
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := verify(h, "123456")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, entity.ErrAlreadyConsumed):
				consumed++
			}
		}()
	}
	wg.Wait()

	// Assert
	if successes != 1 || consumed != n-1 {
		t.Fatalf("successes = %d consumed = %d", successes, consumed)
	}
	if len(h.db.finalized) != 1 {
		t.Fatalf("finalized %d times", len(h.db.finalized))
	}
}

func TestVerifyPaymentOTPMalformedCodeSkipsLookup(t *testing.T) {
	for _, code := range []string{"", "12345", "1234567", "12a456", "١٢٣٤٥٦", " 123456"} {
		t.Run(code, func(t *testing.T) {
			// Arrange
			h := sent(t, "123456")

			// Act
			_, err := verify(h, code)

			// Assert
			assertIs(t, err, entity.ErrInvalidInput)
			if goerror.Reason(err) != entity.ReasonInvalidInput {
				t.Fatalf("reason = %q", goerror.Reason(err))
			}
			if h.store.verifies != 0 {
				t.Fatalf("store consulted %d times", h.store.verifies)
			}
		})
	}
}

func TestVerifyPaymentOTPLockout(t *testing.T) {
	// Arrange
	h := sent(t, "123456")

	// Act
	var errs []error
	for range 5 {
		_, err := verify(h, "000000")
		errs = append(errs, err)
	}
	_, after := verify(h, "123456")

	// Assert
	for i := range 4 {
		assertIs(t, errs[i], entity.ErrInvalidCode)
	}
	assertIs(t, errs[4], entity.ErrTooManyAttempts)
	assertIs(t, after, entity.ErrNoActiveChallenge)
}

func TestVerifyPaymentOTPNoChallenge(t *testing.T) {
	// Arrange
	h := newHarness(t)

	// Act
	_, err := verify(h, "123456")

	// Assert
	assertIs(t, err, entity.ErrNoActiveChallenge)
}

func TestVerifyPaymentOTPContextEcho(t *testing.T) {
	// Arrange
	h := sent(t, "123456")
	same := sendInput()
	tampered := sendInput()
	tampered.Amount = 1

	// Act
	_, mismatch := h.uc.VerifyPaymentOTP(authed(), VerifyPaymentOTPInput{TrainingID: 1001, Code: "123456", Echo: &tampered})
	_, match := h.uc.VerifyPaymentOTP(authed(), VerifyPaymentOTPInput{TrainingID: 1001, Code: "123456", Echo: &same})

	// Assert
	assertIs(t, mismatch, entity.ErrInvalidContext)
	if match != nil {
		t.Fatalf("matching echo: %v", match)
	}
	if h.db.finalized[0].Payment.Amount != 150000000 {
		t.Fatalf("finalized amount = %d", h.db.finalized[0].Payment.Amount)
	}
}

func TestVerifyPaymentOTPFinalizeConflictKeepsConsumed(t *testing.T) {
	// Arrange
	h := sent(t, "123456")
	h.db.finalizeErr = goerror.ErrConflict

	// Act
	_, first := verify(h, "123456")
	h.db.finalizeErr = nil
	_, second := verify(h, "123456")

	// Assert
	assertIs(t, first, entity.ErrInvalidContext)
	assertIs(t, second, entity.ErrAlreadyConsumed)
}

func TestVerifyPaymentOTPFinalizeFailureReleases(t *testing.T) {
	// Arrange
	h := sent(t, "123456")
	h.db.finalizeErr = errors.New("connection reset")

	// Act
	_, first := verify(h, "123456")
	h.db.finalizeErr = nil
	_, second := verify(h, "123456")

	// Assert
	var gerr *goerror.Error
	if !errors.As(first, &gerr) || gerr.Type() != goerror.TypeServer {
		t.Fatalf("first = %v, want server error", first)
	}
	if second != nil {
		t.Fatalf("released challenge must verify again: %v", second)
	}
}

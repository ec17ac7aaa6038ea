package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/pkg/codeinput"
	"github.com/shandysiswandi/skillbridge/internal/pkg/countdown"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"github.com/shandysiswandi/skillbridge/internal/training/inbound"
)

type fakeAPI struct {
	mu        sync.Mutex
	sends     int
	verifies  []inbound.VerifyPaymentOTPRequest
	sendErr   error
	verifyErr error
	sendGate  chan struct{}
	ttl       int64
	onVerify  func()
}

func (f *fakeAPI) SendPaymentOTP(context.Context, inbound.SendPaymentOTPRequest) (*inbound.SendPaymentOTPResponse, error) {
	if f.sendGate != nil {
		<-f.sendGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &inbound.SendPaymentOTPResponse{TTLSeconds: f.ttl, ResendAfter: 30}, nil
}

func (f *fakeAPI) VerifyPaymentOTP(_ context.Context, req inbound.VerifyPaymentOTPRequest) (*inbound.VerifyPaymentOTPResponse, error) {
	if f.onVerify != nil {
		f.onVerify()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifies = append(f.verifies, req)
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &inbound.VerifyPaymentOTPResponse{Success: true, RegistrationID: "42", FinalizationReference: "TRN-42"}, nil
}

func (f *fakeAPI) verifyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.verifies)
}

type stepTicker struct{ ch chan time.Time }

func (s *stepTicker) C() <-chan time.Time { return s.ch }
func (s *stepTicker) Stop()               {}

type harness struct {
	api     *fakeAPI
	widget  *Widget
	tickers chan *stepTicker
	states  chan State
}

func newWidgetHarness(t *testing.T, ttl int64) *harness {
	t.Helper()

	h := &harness{
		api:     &fakeAPI{ttl: ttl},
		tickers: make(chan *stepTicker, 4),
		states:  make(chan State, 32),
	}
	h.widget = NewWidget(h.api, inbound.SendPaymentOTPRequest{
		TrainingID:   1001,
		Registration: inbound.RegistrationRequest{FullName: "Dewi Lestari"},
		Payment:      inbound.PaymentRequest{Method: "card", Amount: 150000000, Currency: "IDR"},
	},
		WithCountdownTicker(func(time.Duration) countdown.Ticker {
			tk := &stepTicker{ch: make(chan time.Time)}
			h.tickers <- tk
			return tk
		}),
		OnStateChange(func(s State, _ string) { h.states <- s }),
	)
	t.Cleanup(h.widget.Close)

	return h
}

func (h *harness) waitState(t *testing.T, want State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-h.states:
			if s == want {
				return
			}
		case <-deadline:
			t.Fatalf("state %s never reached, now %s", want, h.widget.State())
		}
	}
}

func TestWidgetSubmitBlocksIncomplete(t *testing.T) {
	// Arrange
	h := newWidgetHarness(t, 300)
	if err := h.widget.Send(context.Background()); err != nil {
		t.Fatalf("send: %v", err)
	}
	h.widget.Field().Paste("12345")

	// Act
	_, err := h.widget.Submit(context.Background())

	// Assert
	if !errors.Is(err, codeinput.ErrIncomplete) {
		t.Fatalf("err = %v", err)
	}
	if h.api.verifyCount() != 0 {
		t.Fatalf("incomplete code reached the server")
	}
	if h.widget.Message() != "Please enter complete 6-digit OTP" || h.widget.State() != StateSent {
		t.Fatalf("state %s message %q", h.widget.State(), h.widget.Message())
	}
}

func TestWidgetConfirm(t *testing.T) {
	// Arrange
	h := newWidgetHarness(t, 300)
	_ = h.widget.Send(context.Background())
	h.widget.Field().Paste("123456")

	// Act
	out, err := h.widget.Submit(context.Background())

	// Assert
	if err != nil || out.FinalizationReference != "TRN-42" {
		t.Fatalf("submit: %v %+v", err, out)
	}
	if h.widget.State() != StateConfirmed {
		t.Fatalf("state = %s", h.widget.State())
	}
	req := h.api.verifies[0]
	if req.Code != "123456" || req.Registration == nil || req.Payment == nil || req.Payment.Amount != 150000000 {
		t.Fatalf("verify request = %+v", req)
	}
}

func TestWidgetInvalidCodeIsRetryable(t *testing.T) {
	// Arrange
	h := newWidgetHarness(t, 300)
	_ = h.widget.Send(context.Background())
	h.widget.Field().Paste("000000")
	h.api.verifyErr = &APIError{Status: 400, Reason: entity.ReasonInvalidCode, Message: "Invalid OTP"}

	// Act
	_, err := h.widget.Submit(context.Background())

	// Assert
	if !errors.Is(err, entity.ErrInvalidCode) {
		t.Fatalf("err = %v", err)
	}
	if h.widget.State() != StateFailed || h.widget.Message() != "Invalid OTP" {
		t.Fatalf("state %s message %q", h.widget.State(), h.widget.Message())
	}
	if h.widget.Field().Code() != "000000" {
		t.Fatalf("form state must be kept")
	}
	if h.api.verifyCount() != 1 {
		t.Fatalf("failures must not retry on their own")
	}
	if h.widget.CanResend() || h.widget.Remaining() != 300 {
		t.Fatalf("wrong code opened resend with %d seconds left", h.widget.Remaining())
	}
}

func TestWidgetResendRejectedWhileWindowOpen(t *testing.T) {
	// Arrange
	h := newWidgetHarness(t, 300)
	_ = h.widget.Send(context.Background())
	tk := <-h.tickers
	tk.ch <- time.Time{}
	h.widget.Field().Paste("12")

	// Act
	err := h.widget.Resend(context.Background())

	// Assert
	if !errors.Is(err, ErrResendEarly) {
		t.Fatalf("err = %v", err)
	}
	if h.api.sends != 1 || h.widget.State() != StateSent || h.widget.Field().Code() != "12" {
		t.Fatalf("sends %d state %s cells %v", h.api.sends, h.widget.State(), h.widget.Field().Cells())
	}
}

func TestWidgetWindowEndsDuringVerify(t *testing.T) {
	// Arrange
	h := newWidgetHarness(t, 2)
	_ = h.widget.Send(context.Background())
	tk := <-h.tickers
	h.widget.Field().Paste("000000")
	h.api.verifyErr = &APIError{Status: 400, Reason: entity.ReasonInvalidCode, Message: "Invalid OTP"}
	h.api.onVerify = func() {
		tk.ch <- time.Time{}
		tk.ch <- time.Time{}
		for h.widget.Remaining() != 0 {
			time.Sleep(time.Millisecond)
		}
	}

	// Act
	_, err := h.widget.Submit(context.Background())

	// Assert
	if !errors.Is(err, entity.ErrInvalidCode) {
		t.Fatalf("err = %v", err)
	}
	if h.widget.State() != StateExpired || !h.widget.CanResend() {
		t.Fatalf("state = %s", h.widget.State())
	}
}

func TestWidgetServerExpiryEnablesResend(t *testing.T) {
	// Arrange
	h := newWidgetHarness(t, 300)
	_ = h.widget.Send(context.Background())
	h.widget.Field().Paste("123456")
	h.api.verifyErr = &APIError{Status: 410, Reason: entity.ReasonExpired, Message: "OTP has expired, please request a new one"}

	// Act
	_, _ = h.widget.Submit(context.Background())

	// Assert
	if h.widget.State() != StateExpired || !h.widget.CanResend() {
		t.Fatalf("state = %s", h.widget.State())
	}
}

func TestWidgetCountdownExpiry(t *testing.T) {
	// Arrange
	h := newWidgetHarness(t, 2)
	_ = h.widget.Send(context.Background())
	tk := <-h.tickers
	if h.widget.CanResend() {
		t.Fatalf("resend must wait for the window")
	}

	// Act
	tk.ch <- time.Time{}
	tk.ch <- time.Time{}
	h.waitState(t, StateExpired)

	// Assert
	if h.widget.Remaining() != 0 || !h.widget.CanResend() {
		t.Fatalf("remaining = %d", h.widget.Remaining())
	}
	h.widget.Field().Paste("123456")
	if _, err := h.widget.Submit(context.Background()); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("submit after expiry: %v", err)
	}
	if h.api.verifyCount() != 0 {
		t.Fatalf("expired window must not call the server")
	}
}

func TestWidgetResendResets(t *testing.T) {
	// Arrange
	h := newWidgetHarness(t, 2)
	_ = h.widget.Send(context.Background())
	tk := <-h.tickers
	tk.ch <- time.Time{}
	tk.ch <- time.Time{}
	h.waitState(t, StateExpired)
	h.widget.Field().Paste("111")

	// Act
	err := h.widget.Resend(context.Background())

	// Assert
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if h.widget.State() != StateSent || h.widget.Remaining() != 2 || h.widget.Field().Code() != "" || h.widget.Field().Focus() != 0 {
		t.Fatalf("remaining %d cells %v", h.widget.Remaining(), h.widget.Field().Cells())
	}
	if h.api.sends != 2 {
		t.Fatalf("sends = %d", h.api.sends)
	}
}

func TestWidgetResendDisabledInFlight(t *testing.T) {
	// Arrange
	h := newWidgetHarness(t, 300)
	h.api.sendGate = make(chan struct{})
	first := make(chan error, 1)
	go func() { first <- h.widget.Resend(context.Background()) }()
	for !h.widget.sending.Load() {
		time.Sleep(time.Millisecond)
	}

	// Act
	err := h.widget.Resend(context.Background())
	canResend := h.widget.CanResend()
	close(h.api.sendGate)

	// Assert
	if !errors.Is(err, ErrBusy) || canResend {
		t.Fatalf("second resend = %v can = %v", err, canResend)
	}
	if err := <-first; err != nil {
		t.Fatalf("first resend: %v", err)
	}
}

func TestWidgetSendFailureKeepsState(t *testing.T) {
	// Arrange
	h := newWidgetHarness(t, 300)
	h.api.sendErr = &APIError{Status: 503, Reason: entity.ReasonDeliveryFailed, Message: "We could not send the OTP"}

	// Act
	err := h.widget.Send(context.Background())

	// Assert
	if !errors.Is(err, entity.ErrDeliveryFailed) {
		t.Fatalf("err = %v", err)
	}
	if h.widget.State() != StateIdle || h.widget.Message() != "We could not send the OTP" || !h.widget.CanResend() {
		t.Fatalf("state %s message %q", h.widget.State(), h.widget.Message())
	}
}

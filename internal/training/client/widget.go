package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/shandysiswandi/skillbridge/internal/pkg/codeinput"
	"github.com/shandysiswandi/skillbridge/internal/pkg/countdown"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"github.com/shandysiswandi/skillbridge/internal/training/inbound"
)

var (
	ErrCodeExpired = errors.New("OTP has expired, please request a new one")     //nolint:staticcheck // user facing
	ErrBusy        = errors.New("Please wait for the current request to finish") //nolint:staticcheck // user facing
	ErrResendEarly = errors.New("You can request a new OTP when the timer ends") //nolint:staticcheck // user facing
)

const defaultWindow = 300 * time.Second

type State int

const (
	StateIdle State = iota
	StateSent
	StateExpired
	StateVerifying
	StateConfirmed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSent:
		return "sent"
	case StateExpired:
		return "expired"
	case StateVerifying:
		return "verifying"
	case StateConfirmed:
		return "confirmed"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// API is the server surface the widget needs.
type API interface {
	SendPaymentOTP(ctx context.Context, req inbound.SendPaymentOTPRequest) (*inbound.SendPaymentOTPResponse, error)
	VerifyPaymentOTP(ctx context.Context, req inbound.VerifyPaymentOTPRequest) (*inbound.VerifyPaymentOTPResponse, error)
}

type WidgetOption func(*Widget)

// WithCountdownTicker swaps the ticker used by every countdown the widget
// starts.
func WithCountdownTicker(fn countdown.NewTicker) WidgetOption {
	return func(w *Widget) { w.ticker = fn }
}

// OnStateChange is called after every transition with the new state and the
// message to show, empty when there is nothing to say.
func OnStateChange(fn func(State, string)) WidgetOption {
	return func(w *Widget) { w.onChange = fn }
}

// OnCountdown receives the remaining seconds on every tick.
func OnCountdown(fn func(int)) WidgetOption {
	return func(w *Widget) { w.onTick = fn }
}

// Widget is the payment code entry flow for one pending registration.
type Widget struct {
	api  API
	req  inbound.SendPaymentOTPRequest
	code *codeinput.Field

	ticker   countdown.NewTicker
	onChange func(State, string)
	onTick   func(int)

	sending   *atomic.Bool
	verifying *atomic.Bool

	mu      sync.Mutex
	state   State
	message string
	clock   *countdown.Countdown
	result  *inbound.VerifyPaymentOTPResponse
}

func NewWidget(api API, req inbound.SendPaymentOTPRequest, opts ...WidgetOption) *Widget {
	w := &Widget{
		api:       api,
		req:       req,
		code:      codeinput.New(codeinput.DefaultLength),
		ticker:    countdown.SystemTicker,
		sending:   atomic.NewBool(false),
		verifying: atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Field is the code cells the view renders and edits.
func (w *Widget) Field() *codeinput.Field { return w.code }

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Widget) Message() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.message
}

// Remaining is the seconds left in the current window.
func (w *Widget) Remaining() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.clock == nil {
		return 0
	}
	return w.clock.Remaining()
}

func (w *Widget) Result() *inbound.VerifyPaymentOTPResponse {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// CanResend is true before any code was issued and once the window has run
// out. A wrong code does not open it early.
func (w *Widget) CanResend() bool {
	if w.sending.Load() {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case StateIdle, StateExpired:
		return true
	case StateConfirmed:
		return false
	}
	return w.windowClosed()
}

// Send requests the first code.
func (w *Widget) Send(ctx context.Context) error {
	return w.Resend(ctx)
}

// Resend requests a new code once CanResend allows it. On success the cells
// are cleared and the countdown restarts.
func (w *Widget) Resend(ctx context.Context) error {
	if w.sending.Load() {
		return ErrBusy
	}
	if !w.CanResend() {
		w.setMessage(ErrResendEarly.Error())
		return ErrResendEarly
	}
	return w.send(ctx)
}

// windowClosed must run under mu.
func (w *Widget) windowClosed() bool {
	return w.clock != nil && w.clock.Expired()
}

func (w *Widget) send(ctx context.Context) error {
	if !w.sending.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer w.sending.Store(false)

	resp, err := w.api.SendPaymentOTP(ctx, w.req)
	if err != nil {
		w.mu.Lock()
		w.message = Message(err)
		msg, state := w.message, w.state
		w.mu.Unlock()
		w.notify(state, msg)
		return err
	}

	window := time.Duration(resp.TTLSeconds) * time.Second
	if window <= 0 {
		window = defaultWindow
	}

	w.code.Clear()
	w.stopClock()

	clock := countdown.New(window,
		countdown.WithTicker(w.ticker),
		countdown.OnTick(w.onTick),
		countdown.OnExpire(w.expire),
	)

	w.mu.Lock()
	w.clock = clock
	w.state = StateSent
	w.message = resp.Message()
	w.result = nil
	msg := w.message
	w.mu.Unlock()

	// The window outlives the request that opened it.
	clock.Start(context.WithoutCancel(ctx))

	w.notify(StateSent, msg)
	return nil
}

// stopClock must not run under mu: the countdown goroutine takes mu in
// expire.
func (w *Widget) stopClock() {
	w.mu.Lock()
	c := w.clock
	w.mu.Unlock()

	if c != nil {
		c.Stop()
	}
}

func (w *Widget) expire() {
	w.mu.Lock()
	if w.state != StateSent && w.state != StateFailed {
		w.mu.Unlock()
		return
	}
	w.state = StateExpired
	w.message = ErrCodeExpired.Error()
	w.mu.Unlock()

	w.notify(StateExpired, ErrCodeExpired.Error())
}

// Submit verifies the code in the cells. Incomplete input never reaches the
// server.
func (w *Widget) Submit(ctx context.Context) (*inbound.VerifyPaymentOTPResponse, error) {
	if err := w.code.Validate(); err != nil {
		w.setMessage(err.Error())
		return nil, err
	}

	w.mu.Lock()
	state, closed := w.state, w.windowClosed()
	w.mu.Unlock()

	if state == StateExpired || (state != StateConfirmed && closed) {
		w.transition(StateExpired, ErrCodeExpired.Error())
		return nil, ErrCodeExpired
	}
	switch state {
	case StateConfirmed:
		return w.Result(), nil
	case StateIdle:
		return nil, entity.ErrNoActiveChallenge
	}

	if !w.verifying.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer w.verifying.Store(false)

	w.transition(StateVerifying, "")

	reg := w.req.Registration
	pay := w.req.Payment
	resp, err := w.api.VerifyPaymentOTP(ctx, inbound.VerifyPaymentOTPRequest{
		TrainingID:   w.req.TrainingID,
		Code:         w.code.Code(),
		Registration: &reg,
		Payment:      &pay,
	})
	if err != nil {
		w.mu.Lock()
		closed := w.windowClosed()
		w.mu.Unlock()

		next := StateFailed
		if closed || errors.Is(err, entity.ErrChallengeExpired) || errors.Is(err, entity.ErrNoActiveChallenge) ||
			errors.Is(err, entity.ErrTooManyAttempts) {
			next = StateExpired
		}
		w.transition(next, Message(err))
		return nil, err
	}

	w.stopClock()

	w.mu.Lock()
	w.result = resp
	w.mu.Unlock()

	w.transition(StateConfirmed, resp.Message())
	return resp, nil
}

// Close stops the countdown.
func (w *Widget) Close() {
	w.stopClock()
}

func (w *Widget) transition(s State, msg string) {
	w.mu.Lock()
	w.state = s
	w.message = msg
	w.mu.Unlock()

	w.notify(s, msg)
}

func (w *Widget) setMessage(msg string) {
	w.mu.Lock()
	w.message = msg
	s := w.state
	w.mu.Unlock()

	w.notify(s, msg)
}

func (w *Widget) notify(s State, msg string) {
	if w.onChange != nil {
		w.onChange(s, msg)
	}
}

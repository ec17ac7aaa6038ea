// Package countdown drives a once-per-second countdown toward zero.
package countdown

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Ticker is the subset of *time.Ticker the countdown needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTicker builds a Ticker firing every d.
type NewTicker func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// SystemTicker wraps time.NewTicker.
func SystemTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type Option func(*Countdown)

// WithTicker replaces the ticker source.
func WithTicker(fn NewTicker) Option {
	return func(c *Countdown) {
		if fn != nil {
			c.newTicker = fn
		}
	}
}

// OnTick is called with the remaining seconds after every tick.
func OnTick(fn func(remaining int)) Option {
	return func(c *Countdown) { c.onTick = fn }
}

// OnExpire is called once when the countdown reaches zero.
func OnExpire(fn func()) Option {
	return func(c *Countdown) { c.onExpire = fn }
}

// Countdown counts whole seconds from total down to zero. It is safe for
// concurrent use; callbacks run on the countdown goroutine.
type Countdown struct {
	total     int64
	remaining *atomic.Int64
	running   *atomic.Bool

	newTicker NewTicker
	onTick    func(int)
	onExpire  func()

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func New(total time.Duration, opts ...Option) *Countdown {
	secs := int64(total / time.Second)
	c := &Countdown{
		total:     secs,
		remaining: atomic.NewInt64(secs),
		running:   atomic.NewBool(false),
		newTicker: SystemTicker,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins ticking. It is a no-op while already running or expired.
func (c *Countdown) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.remaining.Load() <= 0 || !c.running.CompareAndSwap(false, true) {
		return
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(ctx, c.newTicker(time.Second), c.stop, c.done)
}

func (c *Countdown) run(ctx context.Context, t Ticker, stop, done chan struct{}) {
	defer close(done)
	defer t.Stop()
	defer c.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-t.C():
			left := c.remaining.Dec()
			if left < 0 {
				c.remaining.Store(0)
				left = 0
			}
			if c.onTick != nil {
				c.onTick(int(left))
			}
			if left == 0 {
				if c.onExpire != nil {
					c.onExpire()
				}
				return
			}
		}
	}
}

// Stop halts ticking and waits for the goroutine to exit.
func (c *Countdown) Stop() {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop, c.done = nil, nil
	c.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Reset stops the countdown and restores the full duration. Call Start to
// run it again.
func (c *Countdown) Reset() {
	c.Stop()
	c.remaining.Store(c.total)
}

func (c *Countdown) Remaining() int {
	return int(c.remaining.Load())
}

func (c *Countdown) Running() bool {
	return c.running.Load()
}

func (c *Countdown) Expired() bool {
	return c.remaining.Load() <= 0
}

package countdown

import (
	"context"
	"testing"
	"time"
)

type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
}

func newManual() *manualTicker {
	return &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{}, 1)}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.stopped <- struct{}{} }

func (m *manualTicker) tick() { m.ch <- time.Time{} }

func TestCountdownToExpiry(t *testing.T) {
	// Arrange
	mt := newManual()
	ticks := make(chan int, 8)
	expired := make(chan struct{}, 1)
	c := New(3*time.Second,
		WithTicker(func(time.Duration) Ticker { return mt }),
		OnTick(func(left int) { ticks <- left }),
		OnExpire(func() { expired <- struct{}{} }),
	)

	// Act
	c.Start(context.Background())
	for range 3 {
		mt.tick()
	}

	// Assert
	for _, want := range []int{2, 1, 0} {
		if got := <-ticks; got != want {
			t.Fatalf("tick = %d, want %d", got, want)
		}
	}
	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatalf("expire callback not called")
	}
	<-mt.stopped
	if !c.Expired() || c.Remaining() != 0 {
		t.Fatalf("remaining = %d", c.Remaining())
	}
}

func TestStopAndReset(t *testing.T) {
	// Arrange
	mt := newManual()
	ticks := make(chan int, 8)
	c := New(300*time.Second,
		WithTicker(func(time.Duration) Ticker { return mt }),
		OnTick(func(left int) { ticks <- left }),
	)
	c.Start(context.Background())
	mt.tick()
	<-ticks

	// Act
	c.Stop()
	stoppedAt := c.Remaining()
	c.Reset()

	// Assert
	if stoppedAt != 299 {
		t.Fatalf("remaining after one tick = %d", stoppedAt)
	}
	if c.Remaining() != 300 || c.Running() || c.Expired() {
		t.Fatalf("reset state: remaining %d running %v", c.Remaining(), c.Running())
	}
}

func TestStartIgnoredWhenExpired(t *testing.T) {
	// Arrange
	called := false
	c := New(0, WithTicker(func(time.Duration) Ticker { called = true; return newManual() }))

	// Act
	c.Start(context.Background())

	// Assert
	if called || c.Running() {
		t.Fatalf("expired countdown must not start")
	}
}

func TestContextCancelStops(t *testing.T) {
	// Arrange
	mt := newManual()
	ctx, cancel := context.WithCancel(context.Background())
	c := New(10*time.Second, WithTicker(func(time.Duration) Ticker { return mt }))
	c.Start(ctx)

	// Act
	cancel()
	<-mt.stopped

	// Assert
	if c.Remaining() != 10 {
		t.Fatalf("remaining = %d", c.Remaining())
	}
	c.Stop()
}

// Package goroutine runs named background jobs under a shared concurrency cap.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/skillbridge/internal/pkg/stacktrace"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

var (
	// ErrClosed is returned by Go once Wait has been called.
	ErrClosed = errors.New("goroutine: manager is closed")
	// ErrLimit is returned by Go when every slot is taken.
	ErrLimit = errors.New("goroutine: concurrency limit reached")
)

// Manager tracks background jobs so shutdown can wait for them.
// Errors returned by jobs, and recovered panics, are collected for Wait.
type Manager struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup

	mu     sync.Mutex
	closed bool
	errs   []error
}

// NewManager creates a Manager that runs at most limit jobs at once.
func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = runtime.NumCPU() * DefaultMaxGoroutine
	}
	return &Manager{sem: semaphore.NewWeighted(int64(limit))}
}

// Go starts f in its own goroutine. It never blocks: when the manager is
// closed or full the job is rejected and the reason returned.
func (m *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		slog.WarnContext(ctx, "goroutine manager is closed, job rejected", "job", name)
		return ErrClosed
	}
	if !m.sem.TryAcquire(1) {
		m.mu.Unlock()
		slog.WarnContext(ctx, "goroutine limit reached, job rejected", "job", name)
		return ErrLimit
	}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer m.sem.Release(1)
		defer func() {
			if rvr := recover(); rvr != nil {
				slog.ErrorContext(ctx, "panic occurred in goroutine", "job", name, "because", rvr, "stack", stacktrace.Summary(debug.Stack()))
				m.record(fmt.Errorf("goroutine %s: panic: %v", name, rvr))
			}
		}()

		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "goroutine canceled before start", "job", name, "because", err)
			return
		}

		if err := f(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.ErrorContext(ctx, "goroutine finished with error", "job", name, "error", err)
			m.record(fmt.Errorf("goroutine %s: %w", name, err))
		}
	}()

	return nil
}

func (m *Manager) record(err error) {
	m.mu.Lock()
	m.errs = append(m.errs, err)
	m.mu.Unlock()
}

// Wait closes the manager, blocks until every job returns and reports
// the collected errors.
func (m *Manager) Wait() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}

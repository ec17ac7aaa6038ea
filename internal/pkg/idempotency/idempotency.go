// Package idempotency keeps a per-key state in Redis so an operation runs at
// most once while it is in flight and for a cool-down after it finishes.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	ErrAlreadyCompleted  = errors.New("idempotency: operation already completed")
	ErrAlreadyFailed     = errors.New("idempotency: operation already failed")
	ErrInvalidState      = errors.New("idempotency: invalid state")
)

// State is the value stored under a key.
type State string

const (
	// StateNone means the caller now holds the key.
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	// StateError is returned alongside a non-nil error.
	StateError State = "error"
)

func (s State) String() string { return string(s) }

// Idempotency tracks keyed operations.
type Idempotency interface {
	Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error)
	MarkCompleted(ctx context.Context, key string, ttl time.Duration) error
	MarkFailed(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
	Remaining(ctx context.Context, key string) (time.Duration, error)
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// acquireScript sets the key to in_progress when absent and otherwise
// returns the stored state, in one round trip.
var acquireScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur then
	return cur
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return ""
`)

// StateTracker implements Idempotency on Redis string keys.
type StateTracker struct {
	client redis.UniversalClient
	prefix string
}

// New uses the "idempotency:" key prefix.
func New(client redis.UniversalClient) *StateTracker {
	return NewWithPrefix(client, "idempotency:")
}

func NewWithPrefix(client redis.UniversalClient, prefix string) *StateTracker {
	return &StateTracker{client: client, prefix: prefix}
}

const defaultTTL = time.Minute

// Option configures Exec.
type Option func(*execOptions)

type execOptions struct {
	lockDuration     time.Duration
	stateTTL         time.Duration
	releaseOnFailure bool
}

// WithLockDuration bounds how long an in-flight run holds the key.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = d }
}

// WithStateTTL sets how long a finished run is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = d }
}

// WithReleaseOnFailure deletes the key when fn fails instead of recording
// StateFailed, so the caller may retry immediately.
func WithReleaseOnFailure() Option {
	return func(o *execOptions) { o.releaseOnFailure = true }
}

// Acquire takes the key for lockDuration. StateNone means it was free;
// any other state is what the previous holder left.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	cur, err := acquireScript.Run(ctx, s.client, []string{s.prefix + key},
		StateInProgress.String(), lockDuration.Milliseconds()).Text()
	if err != nil {
		return StateError, err
	}

	switch State(cur) {
	case "":
		return StateNone, nil
	case StateInProgress, StateCompleted, StateFailed:
		return State(cur), nil
	}
	return StateError, ErrInvalidState
}

func (s *StateTracker) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, StateCompleted.String(), ttl).Err()
}

func (s *StateTracker) MarkFailed(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, StateFailed.String(), ttl).Err()
}

// Release forgets the state of key.
func (s *StateTracker) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Remaining is how long the state of key is still held; zero when none.
func (s *StateTracker) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, s.prefix+key).Result()
	if err != nil {
		return 0, err
	}
	return max(ttl, 0), nil
}

// Exec runs fn unless key already holds a state. The outcome is recorded
// even when ctx is canceled after fn returns.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := execOptions{lockDuration: defaultTTL, stateTTL: defaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lockDuration <= 0 {
		o.lockDuration = defaultTTL
	}
	if o.stateTTL <= 0 {
		o.stateTTL = defaultTTL
	}

	state, err := s.Acquire(ctx, key, o.lockDuration)
	if err != nil {
		return err
	}
	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	}

	runErr := fn(ctx)
	bg := context.WithoutCancel(ctx)

	switch {
	case runErr == nil:
		return s.MarkCompleted(bg, key, o.stateTTL)
	case o.releaseOnFailure:
		return errors.Join(runErr, s.Release(bg, key))
	default:
		return errors.Join(runErr, s.MarkFailed(bg, key, o.stateTTL))
	}
}

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/training/entity"
)

type store interface {
	Put(ctx context.Context, c entity.Challenge, ttl time.Duration) error
	Verify(ctx context.Context, in entity.VerifyChallenge) (entity.VerifyResult, error)
	Release(ctx context.Context, contact string, trainingID, challengeID int64) error
	Revoke(ctx context.Context, contact string, trainingID, challengeID int64) error
}

var (
	_ store = (*Redis)(nil)
	_ store = (*Memory)(nil)
)

var issued = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newChallenge(id int64, codeHash string) entity.Challenge {
	return entity.Challenge{
		ID:         id,
		Contact:    "fresher@example.com",
		TrainingID: 1001,
		CodeHash:   codeHash,
		Context: entity.TransactionContext{
			TrainingID:   1001,
			Registration: entity.RegistrationData{FullName: "Ayu Lestari", Phone: "+6281234567890"},
			Payment: entity.PaymentDetails{
				Method: entity.PaymentMethodCard, Amount: 1500000, Currency: "IDR", CardLastFour: "4242",
			},
		},
		Fingerprint: "fp-1",
		IssuedAt:    issued,
		ExpiresAt:   issued.Add(300 * time.Second),
	}
}

func verifyAt(codeHash string, offset time.Duration) entity.VerifyChallenge {
	return entity.VerifyChallenge{
		Contact:     "fresher@example.com",
		TrainingID:  1001,
		CodeHash:    codeHash,
		Now:         issued.Add(offset),
		MaxAttempts: 5,
	}
}

// runStoreContract exercises behaviour every store driver must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) store) {
	ttl := 15 * time.Minute

	t.Run("no challenge", func(t *testing.T) {
		// Arrange
		s := newStore(t)

		// Act
		res, err := s.Verify(context.Background(), verifyAt("h", time.Second))

		// Assert
		if err != nil || res.Outcome != entity.VerifyOutcomeNoChallenge {
			t.Fatalf("got %v, %v", res.Outcome, err)
		}
	})

	t.Run("match consumes once", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		s := newStore(t)
		if err := s.Put(ctx, newChallenge(1, "good"), ttl); err != nil {
			t.Fatalf("put: %v", err)
		}

		// Act
		first, err1 := s.Verify(ctx, verifyAt("good", 299*time.Second))
		second, err2 := s.Verify(ctx, verifyAt("good", 299*time.Second))

		// Assert
		if err1 != nil || first.Outcome != entity.VerifyOutcomeMatched {
			t.Fatalf("first = %v, %v", first.Outcome, err1)
		}
		if first.Challenge == nil || first.Challenge.ID != 1 || first.Challenge.Context.Payment.Amount != 1500000 {
			t.Fatalf("challenge not returned intact: %+v", first.Challenge)
		}
		if err2 != nil || second.Outcome != entity.VerifyOutcomeConsumed {
			t.Fatalf("second = %v, %v", second.Outcome, err2)
		}
	})

	t.Run("expired after window", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		s := newStore(t)
		_ = s.Put(ctx, newChallenge(1, "good"), ttl)

		// Act
		atBoundary, _ := s.Verify(ctx, verifyAt("bad", 300*time.Second))
		late, _ := s.Verify(ctx, verifyAt("good", 301*time.Second))

		// Assert
		if atBoundary.Outcome != entity.VerifyOutcomeCodeMismatch {
			t.Fatalf("boundary = %v, want code mismatch", atBoundary.Outcome)
		}
		if late.Outcome != entity.VerifyOutcomeExpired {
			t.Fatalf("late = %v, want expired", late.Outcome)
		}
	})

	t.Run("wrong then right", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		s := newStore(t)
		_ = s.Put(ctx, newChallenge(1, "good"), ttl)

		// Act
		wrong, _ := s.Verify(ctx, verifyAt("bad", 10*time.Second))
		right, _ := s.Verify(ctx, verifyAt("good", 20*time.Second))

		// Assert
		if wrong.Outcome != entity.VerifyOutcomeCodeMismatch || wrong.Attempts != 1 {
			t.Fatalf("wrong = %v attempts %d", wrong.Outcome, wrong.Attempts)
		}
		if right.Outcome != entity.VerifyOutcomeMatched {
			t.Fatalf("right = %v", right.Outcome)
		}
	})

	t.Run("lockout deletes challenge", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		s := newStore(t)
		_ = s.Put(ctx, newChallenge(1, "good"), ttl)
		in := verifyAt("bad", time.Second)
		in.MaxAttempts = 3

		// Act
		var last entity.VerifyResult
		for range 3 {
			last, _ = s.Verify(ctx, in)
		}
		after, _ := s.Verify(ctx, verifyAt("good", 2*time.Second))

		// Assert
		if last.Outcome != entity.VerifyOutcomeLocked || last.Attempts != 3 {
			t.Fatalf("last = %v attempts %d", last.Outcome, last.Attempts)
		}
		if after.Outcome != entity.VerifyOutcomeNoChallenge {
			t.Fatalf("after lockout = %v", after.Outcome)
		}
	})

	t.Run("fingerprint mismatch", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		s := newStore(t)
		_ = s.Put(ctx, newChallenge(1, "good"), ttl)
		in := verifyAt("good", time.Second)
		in.Fingerprint = "fp-other"

		// Act
		res, _ := s.Verify(ctx, in)

		// Assert
		if res.Outcome != entity.VerifyOutcomeContextMismatch {
			t.Fatalf("got %v", res.Outcome)
		}
	})

	t.Run("put supersedes", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		s := newStore(t)
		_ = s.Put(ctx, newChallenge(1, "old"), ttl)
		_ = s.Put(ctx, newChallenge(2, "new"), ttl)

		// Act
		old, _ := s.Verify(ctx, verifyAt("old", time.Second))
		fresh, _ := s.Verify(ctx, verifyAt("new", time.Second))

		// Assert
		if old.Outcome != entity.VerifyOutcomeCodeMismatch {
			t.Fatalf("old = %v", old.Outcome)
		}
		if fresh.Outcome != entity.VerifyOutcomeMatched || fresh.Challenge.ID != 2 {
			t.Fatalf("fresh = %v", fresh.Outcome)
		}
	})

	t.Run("release and revoke guard by id", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		s := newStore(t)
		_ = s.Put(ctx, newChallenge(7, "good"), ttl)
		_, _ = s.Verify(ctx, verifyAt("good", time.Second))

		// Act
		_ = s.Release(ctx, "fresher@example.com", 1001, 99)
		stillConsumed, _ := s.Verify(ctx, verifyAt("good", time.Second))
		_ = s.Release(ctx, "fresher@example.com", 1001, 7)
		again, _ := s.Verify(ctx, verifyAt("good", time.Second))
		_ = s.Revoke(ctx, "fresher@example.com", 1001, 99)
		kept, _ := s.Verify(ctx, verifyAt("good", time.Second))
		_ = s.Revoke(ctx, "fresher@example.com", 1001, 7)
		gone, _ := s.Verify(ctx, verifyAt("good", time.Second))

		// Assert
		if stillConsumed.Outcome != entity.VerifyOutcomeConsumed {
			t.Fatalf("foreign release changed state: %v", stillConsumed.Outcome)
		}
		if again.Outcome != entity.VerifyOutcomeMatched {
			t.Fatalf("released challenge = %v", again.Outcome)
		}
		if kept.Outcome != entity.VerifyOutcomeConsumed {
			t.Fatalf("foreign revoke changed state: %v", kept.Outcome)
		}
		if gone.Outcome != entity.VerifyOutcomeNoChallenge {
			t.Fatalf("revoked challenge = %v", gone.Outcome)
		}
	})

	t.Run("concurrent verifies match once", func(t *testing.T) {
		// Arrange
		ctx := context.Background()
		s := newStore(t)
		_ = s.Put(ctx, newChallenge(1, "good"), ttl)
		const n = 16
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			matched int
		)

		// Act
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := s.Verify(ctx, verifyAt("good", time.Second))
				if err == nil && res.Outcome == entity.VerifyOutcomeMatched {
					mu.Lock()
					matched++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		// Assert
		if matched != 1 {
			t.Fatalf("matched = %d, want exactly 1", matched)
		}
	})
}

package entity

import "time"

// Challenge is the server-held record of an issued payment code. The code
// itself is never stored, only CodeHash.
type Challenge struct {
	ID          int64
	Contact     string
	TrainingID  int64
	CodeHash    string
	Context     TransactionContext
	Fingerprint string
	IssuedAt    time.Time
	ExpiresAt   time.Time
	Consumed    bool
	Attempts    int
}

// ExpiredAt reports whether the window has elapsed. The instant equal to
// ExpiresAt is still valid.
func (c Challenge) ExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

type VerifyOutcome int

const (
	VerifyOutcomeMatched VerifyOutcome = iota
	VerifyOutcomeNoChallenge
	VerifyOutcomeConsumed
	VerifyOutcomeExpired
	VerifyOutcomeContextMismatch
	VerifyOutcomeCodeMismatch
	VerifyOutcomeLocked
)

func (o VerifyOutcome) String() string {
	switch o {
	case VerifyOutcomeMatched:
		return "matched"
	case VerifyOutcomeNoChallenge:
		return "no_challenge"
	case VerifyOutcomeConsumed:
		return "consumed"
	case VerifyOutcomeExpired:
		return "expired"
	case VerifyOutcomeContextMismatch:
		return "context_mismatch"
	case VerifyOutcomeCodeMismatch:
		return "code_mismatch"
	case VerifyOutcomeLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// VerifyChallenge is the input to an atomic check-and-consume.
type VerifyChallenge struct {
	Contact    string
	TrainingID int64
	CodeHash   string
	// Fingerprint is compared only when non-empty.
	Fingerprint string
	Now         time.Time
	// MaxAttempts of zero disables the lockout.
	MaxAttempts int
}

type VerifyResult struct {
	Outcome   VerifyOutcome
	Challenge *Challenge
	Attempts  int
}

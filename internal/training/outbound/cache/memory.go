package cache

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"go.opentelemetry.io/otel/trace"
)

type memoryEntry struct {
	chal     entity.Challenge
	evictsAt time.Time
}

// Memory is a process-local store for single-instance runs and tests.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	ins     instrument.Instrumentation
}

func NewMemory(ins instrument.Instrumentation) *Memory {
	return &Memory{entries: make(map[string]*memoryEntry), ins: ins}
}

func (m *Memory) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return m.ins.Tracer("training.outbound.cache").Start(ctx, name)
}

func (m *Memory) Put(ctx context.Context, c entity.Challenge, ttl time.Duration) error {
	_, span := m.startSpan(ctx, "Put")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	c.Consumed = false
	c.Attempts = 0
	m.entries[challengeKey(c.Contact, c.TrainingID)] = &memoryEntry{chal: c, evictsAt: c.IssuedAt.Add(ttl)}

	return nil
}

func (m *Memory) Verify(ctx context.Context, in entity.VerifyChallenge) (entity.VerifyResult, error) {
	_, span := m.startSpan(ctx, "Verify")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	key := challengeKey(in.Contact, in.TrainingID)
	e, ok := m.entries[key]
	if ok && in.Now.After(e.evictsAt) {
		delete(m.entries, key)
		ok = false
	}
	if !ok {
		return entity.VerifyResult{Outcome: entity.VerifyOutcomeNoChallenge}, nil
	}

	c := &e.chal
	switch {
	case c.Consumed:
		return entity.VerifyResult{Outcome: entity.VerifyOutcomeConsumed, Attempts: c.Attempts}, nil
	case c.ExpiredAt(in.Now):
		return entity.VerifyResult{Outcome: entity.VerifyOutcomeExpired, Attempts: c.Attempts}, nil
	case in.Fingerprint != "" && !sameHash(in.Fingerprint, c.Fingerprint):
		return entity.VerifyResult{Outcome: entity.VerifyOutcomeContextMismatch, Attempts: c.Attempts}, nil
	case !sameHash(in.CodeHash, c.CodeHash):
		c.Attempts++
		if in.MaxAttempts > 0 && c.Attempts >= in.MaxAttempts {
			delete(m.entries, key)
			return entity.VerifyResult{Outcome: entity.VerifyOutcomeLocked, Attempts: c.Attempts}, nil
		}
		return entity.VerifyResult{Outcome: entity.VerifyOutcomeCodeMismatch, Attempts: c.Attempts}, nil
	}

	c.Consumed = true
	out := *c

	return entity.VerifyResult{Outcome: entity.VerifyOutcomeMatched, Challenge: &out, Attempts: c.Attempts}, nil
}

func (m *Memory) Release(ctx context.Context, contact string, trainingID, challengeID int64) error {
	_, span := m.startSpan(ctx, "Release")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[challengeKey(contact, trainingID)]; ok && e.chal.ID == challengeID {
		e.chal.Consumed = false
	}
	return nil
}

func (m *Memory) Revoke(ctx context.Context, contact string, trainingID, challengeID int64) error {
	_, span := m.startSpan(ctx, "Revoke")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	key := challengeKey(contact, trainingID)
	if e, ok := m.entries[key]; ok && e.chal.ID == challengeID {
		delete(m.entries, key)
	}
	return nil
}

// sameHash compares stored digests in constant time.
func sameHash(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/shandysiswandi/skillbridge/internal/training/entity"
	"go.opentelemetry.io/otel/trace"
)

// verifyScript returns {outcome, attempts, fields...}. Outcome numbers follow
// entity.VerifyOutcome. Lua string equality is not constant time; the values
// compared are keyed HMACs, so timing reveals nothing about the code.
var verifyScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return {1, 0}
end
local f = redis.call('HMGET', KEYS[1], 'consumed', 'expires_at', 'fingerprint', 'code_hash', 'attempts')
local attempts = tonumber(f[5]) or 0
if f[1] == '1' then
  return {2, attempts}
end
if tonumber(ARGV[1]) > tonumber(f[2]) then
  return {3, attempts}
end
if ARGV[3] ~= '' and ARGV[3] ~= f[3] then
  return {4, attempts}
end
if ARGV[2] ~= f[4] then
  attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
  local limit = tonumber(ARGV[4])
  if limit > 0 and attempts >= limit then
    redis.call('DEL', KEYS[1])
    return {6, attempts}
  end
  return {5, attempts}
end
redis.call('HSET', KEYS[1], 'consumed', '1')
return {0, attempts, redis.call('HGETALL', KEYS[1])}
`)

var releaseScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'id') == ARGV[1] then
  redis.call('HSET', KEYS[1], 'consumed', '0')
  return 1
end
return 0
`)

var revokeScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'id') == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// Redis stores one hash per challenge key.
type Redis struct {
	client redis.UniversalClient
	ins    instrument.Instrumentation
}

func NewRedis(client redis.UniversalClient, ins instrument.Instrumentation) *Redis {
	return &Redis{client: client, ins: ins}
}

func (r *Redis) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return r.ins.Tracer("training.outbound.cache").Start(ctx, name)
}

// Put replaces whatever challenge the pair had.
func (r *Redis) Put(ctx context.Context, c entity.Challenge, ttl time.Duration) (err error) {
	ctx, span := r.startSpan(ctx, "Put")
	defer func() { endSpan(span, err) }()

	rawCtx, err := json.Marshal(c.Context)
	if err != nil {
		return err
	}

	key := challengeKey(c.Contact, c.TrainingID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"id", strconv.FormatInt(c.ID, 10),
			"contact", c.Contact,
			"training_id", strconv.FormatInt(c.TrainingID, 10),
			"code_hash", c.CodeHash,
			"context", string(rawCtx),
			"fingerprint", c.Fingerprint,
			"issued_at", strconv.FormatInt(c.IssuedAt.UnixMilli(), 10),
			"expires_at", strconv.FormatInt(c.ExpiresAt.UnixMilli(), 10),
			"consumed", "0",
			"attempts", "0",
		)
		pipe.PExpire(ctx, key, ttl)
		return nil
	})
	return err
}

func (r *Redis) Verify(ctx context.Context, in entity.VerifyChallenge) (_ entity.VerifyResult, err error) {
	ctx, span := r.startSpan(ctx, "Verify")
	defer func() { endSpan(span, err) }()

	raw, err := verifyScript.Run(ctx, r.client,
		[]string{challengeKey(in.Contact, in.TrainingID)},
		in.Now.UnixMilli(), in.CodeHash, in.Fingerprint, in.MaxAttempts,
	).Slice()
	if err != nil {
		return entity.VerifyResult{}, err
	}
	if len(raw) < 2 {
		return entity.VerifyResult{}, fmt.Errorf("verify script: unexpected reply %v", raw)
	}

	outcome, _ := raw[0].(int64)
	attempts, _ := raw[1].(int64)
	res := entity.VerifyResult{Outcome: entity.VerifyOutcome(outcome), Attempts: int(attempts)}
	if res.Outcome != entity.VerifyOutcomeMatched {
		return res, nil
	}

	if len(raw) < 3 {
		return entity.VerifyResult{}, errors.New("verify script: matched without fields")
	}
	pairs, _ := raw[2].([]any)
	chal, err := challengeFromPairs(pairs)
	if err != nil {
		return entity.VerifyResult{}, err
	}
	res.Challenge = chal

	return res, nil
}

func (r *Redis) Release(ctx context.Context, contact string, trainingID, challengeID int64) (err error) {
	ctx, span := r.startSpan(ctx, "Release")
	defer func() { endSpan(span, err) }()

	return releaseScript.Run(ctx, r.client,
		[]string{challengeKey(contact, trainingID)}, strconv.FormatInt(challengeID, 10),
	).Err()
}

func (r *Redis) Revoke(ctx context.Context, contact string, trainingID, challengeID int64) (err error) {
	ctx, span := r.startSpan(ctx, "Revoke")
	defer func() { endSpan(span, err) }()

	return revokeScript.Run(ctx, r.client,
		[]string{challengeKey(contact, trainingID)}, strconv.FormatInt(challengeID, 10),
	).Err()
}

func challengeFromPairs(pairs []any) (*entity.Challenge, error) {
	fields := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		k, _ := pairs[i].(string)
		v, _ := pairs[i+1].(string)
		fields[k] = v
	}

	id, err := strconv.ParseInt(fields["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("challenge id: %w", err)
	}
	trainingID, err := strconv.ParseInt(fields["training_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("challenge training id: %w", err)
	}
	issuedAt, err := strconv.ParseInt(fields["issued_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("challenge issued at: %w", err)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("challenge expires at: %w", err)
	}
	attempts, _ := strconv.Atoi(fields["attempts"])

	var tc entity.TransactionContext
	if err := json.Unmarshal([]byte(fields["context"]), &tc); err != nil {
		return nil, fmt.Errorf("challenge context: %w", err)
	}

	return &entity.Challenge{
		ID:          id,
		Contact:     fields["contact"],
		TrainingID:  trainingID,
		CodeHash:    fields["code_hash"],
		Context:     tc,
		Fingerprint: fields["fingerprint"],
		IssuedAt:    time.UnixMilli(issuedAt),
		ExpiresAt:   time.UnixMilli(expiresAt),
		Consumed:    fields["consumed"] == "1",
		Attempts:    attempts,
	}, nil
}

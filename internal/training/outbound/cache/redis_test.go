package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/skillbridge/internal/pkg/instrument"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate redis: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis uri: %v", err)
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis uri: %v", err)
	}

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisStore(t *testing.T) {
	client := newRedisClient(t)

	runStoreContract(t, func(t *testing.T) store {
		if err := client.FlushDB(context.Background()).Err(); err != nil {
			t.Fatalf("flush: %v", err)
		}
		return NewRedis(client, instrument.NewNoop())
	})
}

func TestRedisStoreSetsRetentionTTL(t *testing.T) {
	// Arrange
	ctx := context.Background()
	client := newRedisClient(t)
	s := NewRedis(client, instrument.NewNoop())

	// Act
	err := s.Put(ctx, newChallenge(1, "good"), 15*time.Minute)

	// Assert
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	ttl := client.PTTL(ctx, challengeKey("fresher@example.com", 1001)).Val()
	if ttl <= 14*time.Minute || ttl > 15*time.Minute {
		t.Fatalf("ttl = %v", ttl)
	}
	if v := client.HGet(ctx, challengeKey("fresher@example.com", 1001), "code_hash").Val(); v != "good" {
		t.Fatalf("code hash = %q", v)
	}
}

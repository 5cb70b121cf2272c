// Package redis holds the Redis-backed review idempotency guard.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/synaptic/study-engine/internal/platform/logger"
	"github.com/synaptic/study-engine/internal/store"
)

const pendingMarker = "\x00pending"

// DefaultKeyPrefix namespaces guard keys.
const DefaultKeyPrefix = "study:review:"

// IdempotencyGuard remembers the response of a review submission under the
// client supplied Idempotency-Key so a replay does not apply the grade twice.
type IdempotencyGuard struct {
	client goredis.Cmdable
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

var _ store.IdempotencyGuard = (*IdempotencyGuard)(nil)

// NewIdempotencyGuard wraps an existing client.
func NewIdempotencyGuard(client goredis.Cmdable, prefix string, ttl time.Duration, logger *slog.Logger) *IdempotencyGuard {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IdempotencyGuard{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "idempotency_guard")),
	}
}

// Connect parses url, pings the server and returns the client.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Key returns the Redis key for a learner's idempotency key.
func (g *IdempotencyGuard) Key(learnerID uuid.UUID, key string) string {
	return g.prefix + learnerID.String() + ":" + key
}

// Begin claims key. When the claim succeeds started is true and the caller
// must later call Complete or Abort. Otherwise the stored response of the
// earlier request is returned, or store.ErrRequestInProgress while it is
// still running.
func (g *IdempotencyGuard) Begin(
	ctx context.Context,
	learnerID uuid.UUID,
	key string,
) (cached []byte, started bool, err error) {
	log := logger.FromContextOrDefault(ctx, g.logger)
	redisKey := g.Key(learnerID, key)

	ok, err := g.client.SetNX(ctx, redisKey, pendingMarker, g.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return nil, true, nil
	}

	val, err := g.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		// Expired between SETNX and GET; treat as a fresh claim.
		return g.Begin(ctx, learnerID, key)
	}
	if err != nil {
		return nil, false, fmt.Errorf("read idempotency key: %w", err)
	}
	if string(val) == pendingMarker {
		return nil, false, store.ErrRequestInProgress
	}

	log.Debug("replayed idempotent request", slog.String("learner_id", learnerID.String()))
	return val, false, nil
}

// Complete stores the response for key.
func (g *IdempotencyGuard) Complete(ctx context.Context, learnerID uuid.UUID, key string, response []byte) error {
	if err := g.client.Set(ctx, g.Key(learnerID, key), response, g.ttl).Err(); err != nil {
		return fmt.Errorf("store idempotent response: %w", err)
	}
	return nil
}

// Abort releases key so the request can be retried.
func (g *IdempotencyGuard) Abort(ctx context.Context, learnerID uuid.UUID, key string) error {
	if err := g.client.Del(ctx, g.Key(learnerID, key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

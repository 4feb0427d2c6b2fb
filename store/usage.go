// Package store provides optional consumed-token tracking for hosts that
// want password reset tokens to be single-use. The core does not invalidate
// a token after redemption; wiring one of these stores into the engine layers
// replay prevention on top of the signature and expiry checks.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps backend failures so callers can distinguish an outage
// from an ordinary already-consumed result.
var ErrUnavailable = errors.New("token usage backend unavailable")

// TokenUsageStore records redeemed reset claims. Consume is atomic: exactly
// one caller for a given reset key observes true until the claim's natural
// expiry, after which the record may be garbage collected.
type TokenUsageStore interface {
	Consume(ctx context.Context, resetKey string, expiresAt time.Time) (bool, error)
}

const defaultPrefix = "ufrt"

// RedisTokenUsage marks consumed claims with SETNX under a TTL aligned to
// the claim expiry, so records clean themselves up.
type RedisTokenUsage struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenUsage returns a Redis-backed usage store. An empty prefix
// falls back to the package default.
func NewRedisTokenUsage(client *redis.Client, prefix string) *RedisTokenUsage {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisTokenUsage{client: client, prefix: prefix}
}

func (s *RedisTokenUsage) key(resetKey string) string {
	return s.prefix + ":" + resetKey
}

// Consume marks the claim consumed. Returns false when another redemption
// already claimed it.
func (s *RedisTokenUsage) Consume(ctx context.Context, resetKey string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return false, nil
	}

	ok, err := s.client.SetNX(ctx, s.key(resetKey), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return ok, nil
}

// MemoryTokenUsage is an in-process usage store for single-instance hosts
// and tests. Expired entries are dropped lazily on the next Consume.
type MemoryTokenUsage struct {
	mu       sync.Mutex
	consumed map[string]time.Time
	now      func() time.Time
}

// NewMemoryTokenUsage returns an empty in-memory usage store.
func NewMemoryTokenUsage() *MemoryTokenUsage {
	return &MemoryTokenUsage{
		consumed: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Consume marks the claim consumed. Returns false when the reset key was
// already consumed and its claim has not yet expired.
func (s *MemoryTokenUsage) Consume(_ context.Context, resetKey string, expiresAt time.Time) (bool, error) {
	now := s.now()
	if !now.Before(expiresAt) {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, exp := range s.consumed {
		if !now.Before(exp) {
			delete(s.consumed, key)
		}
	}

	if _, seen := s.consumed[resetKey]; seen {
		return false, nil
	}

	s.consumed[resetKey] = expiresAt
	return true, nil
}

package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps window counters in Redis so the limit holds across
// horizontally scaled instances. Windows expire server-side; no sweep is
// needed.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore returns a store writing keys under prefix.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

// Incr implements Store with an INCR + PTTL pipeline. The first hit of a
// window arms the expiry; NX guards against clobbering it on later hits.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	k := s.prefix + ":" + key

	pipe := s.rdb.Pipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Do(ctx, "pexpire", k, window.Milliseconds(), "nx")
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("rate-limit incr %q: %w", k, err)
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return incr.Val(), time.Now().Add(remaining), nil
}

// Package ratelimit implements fixed-window request limiting keyed by caller
// identity.
//
// Counters live behind the Store interface so the same contract works whether
// the service runs as one process (MemoryStore) or many (RedisStore). Store
// exposes a single atomic increment-and-report operation, which closes the
// read-modify-write race a naive shared map would have at the window boundary.
package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Store owns the per-key window counters.
type Store interface {
	// Incr atomically increments the counter for key's current window,
	// creating a fresh window when none is active, and reports the count
	// after the increment together with the window's expiry.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration // meaningful only when blocked
}

// Limiter makes fixed-window admission decisions for one scope.
type Limiter struct {
	store  Store
	scope  string // key prefix, e.g. "api"
	max    int
	window time.Duration
}

// New returns a Limiter admitting max requests per identity per window.
func New(store Store, scope string, max int, window time.Duration) *Limiter {
	return &Limiter{store: store, scope: scope, max: max, window: window}
}

// Check records one request for identity and decides whether to admit it.
// A store failure fails open: availability of the site wins over strictness
// of the limit, and the failure is logged.
func (l *Limiter) Check(ctx context.Context, identity string) Decision {
	count, resetAt, err := l.store.Incr(ctx, l.scope+":"+identity, l.window)
	if err != nil {
		slog.Warn("rate-limit store unavailable, failing open", "scope", l.scope, "err", err)
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max, ResetAt: time.Now().Add(l.window)}
	}

	remaining := l.max - int(count)
	if remaining < 0 {
		remaining = 0
	}

	d := Decision{
		Allowed:   count <= int64(l.max),
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !d.Allowed {
		d.RetryAfter = time.Until(resetAt)
		if d.RetryAfter < 0 {
			d.RetryAfter = 0
		}
	}
	return d
}

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultMaxAge is how long a snapshot is served before an unforced read
// fetches fresh.
const DefaultMaxAge = time.Hour

// FetchError is an upstream ATS failure while serving or refreshing the
// cache. The previous snapshot, if any, stays in place.
type FetchError struct{ Err error }

func (e *FetchError) Error() string { return fmt.Sprintf("jobs: upstream fetch failed: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// Cache is the time-windowed read-through cache in front of the ATS.
//
// Concurrent misses may each trigger an upstream fetch; they are not
// coalesced. The scheduled warm refresh keeps cold misses rare, and the
// postings feed tolerates the occasional duplicate read.
type Cache struct {
	fetcher Fetcher
	store   SnapshotStore
	maxAge  time.Duration
	bypass  bool
}

// CacheOption customises a Cache.
type CacheOption func(*Cache)

// WithMaxAge overrides the staleness window.
func WithMaxAge(d time.Duration) CacheOption {
	return func(c *Cache) { c.maxAge = d }
}

// WithBypass makes every read fetch fresh (build/dev mode).
func WithBypass(bypass bool) CacheOption {
	return func(c *Cache) { c.bypass = bypass }
}

// NewCache returns a cache serving snapshots up to DefaultMaxAge old.
func NewCache(fetcher Fetcher, store SnapshotStore, opts ...CacheOption) *Cache {
	c := &Cache{fetcher: fetcher, store: store, maxAge: DefaultMaxAge}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJobs returns the cached listing when it is fresh enough, fetching from
// the ATS otherwise. The slot is only overwritten on a successful fetch, so
// an upstream failure leaves the previous listing servable.
func (c *Cache) GetJobs(ctx context.Context) ([]Job, error) {
	snap, err := c.store.Load(ctx)
	if err != nil {
		// A broken store read degrades to a miss; the fetch below recovers.
		slog.Warn("job snapshot load failed", "err", err)
		snap = nil
	}

	if snap != nil && !c.bypass && time.Since(snap.FetchedAt) < c.maxAge {
		return snap.Jobs, nil
	}

	return c.refresh(ctx)
}

// Refresh unconditionally fetches fresh and replaces the slot, independent
// of staleness.
func (c *Cache) Refresh(ctx context.Context) ([]Job, error) {
	return c.refresh(ctx)
}

// LastFetched reports when the current snapshot was taken. The zero time
// means no snapshot exists yet.
func (c *Cache) LastFetched(ctx context.Context) time.Time {
	snap, err := c.store.Load(ctx)
	if err != nil || snap == nil {
		return time.Time{}
	}
	return snap.FetchedAt
}

func (c *Cache) refresh(ctx context.Context) ([]Job, error) {
	fresh, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	if fresh == nil {
		fresh = []Job{}
	}

	snap := &Snapshot{Jobs: fresh, FetchedAt: time.Now()}
	if err := c.store.Save(ctx, snap); err != nil {
		// The fetch succeeded; serve it even if the slot write failed.
		slog.Warn("job snapshot save failed", "err", err)
	}
	return fresh, nil
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Snapshot is one complete fetch of the listing set. The cache replaces it
// wholesale; there is no per-job keying.
type Snapshot struct {
	Jobs      []Job     `json:"jobs"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// SnapshotStore owns the single cache slot. Implementations return
// (nil, nil) from Load when no snapshot has been saved yet.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// ─── In-process slot ─────────────────────────────────────────────────────────

// MemorySnapshotStore holds the slot in process memory.
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewMemorySnapshotStore returns an empty slot.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{}
}

// Load implements SnapshotStore.
func (s *MemorySnapshotStore) Load(context.Context) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, nil
}

// Save implements SnapshotStore.
func (s *MemorySnapshotStore) Save(_ context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return nil
}

// ─── Redis slot ──────────────────────────────────────────────────────────────

// RedisSnapshotStore keeps the slot in Redis so all instances serve the same
// listing and a refresh on one instance is visible everywhere.
type RedisSnapshotStore struct {
	rdb *redis.Client
	key string
}

// NewRedisSnapshotStore returns a store writing the snapshot under key.
func NewRedisSnapshotStore(rdb *redis.Client, key string) *RedisSnapshotStore {
	if key == "" {
		key = "jobs:snapshot"
	}
	return &RedisSnapshotStore{rdb: rdb, key: key}
}

// Load implements SnapshotStore.
func (s *RedisSnapshotStore) Load(ctx context.Context) (*Snapshot, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load job snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode job snapshot: %w", err)
	}
	return &snap, nil
}

// Save implements SnapshotStore. The value has no TTL; staleness is judged
// from FetchedAt so a failed refresh never erases the last good listing.
func (s *RedisSnapshotStore) Save(ctx context.Context, snap *Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode job snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("save job snapshot: %w", err)
	}
	return nil
}

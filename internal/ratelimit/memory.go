package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps window counters in a mutex-guarded map. Suitable for a
// single process; expired windows are removed by Sweep, which the process
// wiring runs on a fixed schedule.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*window)}
}

// Incr implements Store. The mutex makes increment-and-report atomic with
// respect to concurrent requests on the same key.
func (s *MemoryStore) Incr(_ context.Context, key string, windowDur time.Duration) (int64, time.Time, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(windowDur)}
		s.windows[key] = w
		return 1, w.resetAt, nil
	}

	w.count++
	return w.count, w.resetAt, nil
}

// Sweep removes every expired window, bounding the store's growth.
func (s *MemoryStore) Sweep() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, w := range s.windows {
		if now.After(w.resetAt) {
			delete(s.windows, key)
		}
	}
}

// Len reports the number of tracked windows, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

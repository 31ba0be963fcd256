// Package cache provides the in-memory TTL stores used for topic pages and
// summaries. Expiry is lazy: entries are dropped when read after their deadline.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time; injected so tests control expiry.
type Clock func() time.Time

// Stats is a point-in-time snapshot of store activity.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Store is a mutex-guarded key/value map with per-entry deadlines.
// There is no capacity bound; callers keep the key space small.
type Store[V any] struct {
	mu      sync.Mutex
	now     Clock
	entries map[string]entry[V]
	hits    uint64
	misses  uint64
}

// New creates an empty store. A nil clock uses time.Now.
func New[V any](now Clock) *Store[V] {
	if now == nil {
		now = time.Now
	}
	return &Store[V]{now: now, entries: make(map[string]entry[V])}
}

// Get returns the value for key. Expired entries are deleted and reported as a miss.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return zero, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		s.misses++
		return zero, false
	}
	s.hits++
	return e.value, true
}

// Set stores value under key until now+ttl, replacing any previous entry.
func (s *Store[V]) Set(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{value: value, expiresAt: s.now().Add(ttl)}
}

// Delete removes key. Missing keys are ignored.
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len reports stored entries, including ones that expired but were not read yet.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats returns hit and miss counters plus the current entry count.
func (s *Store[V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Hits: s.hits, Misses: s.misses, Entries: len(s.entries)}
}

// Package cache holds the most recently completed result set so the
// presentation layer can redisplay or filter without re-fetching.
package cache

import (
	"sync"
	"time"

	"stockquote/internal/quote"
)

// Store keeps the last published Set. Each publication replaces the
// previous set wholesale: a cycle with zero successes still replaces,
// so stale rows are never mixed with fresh ones.
type Store struct {
	mu        sync.RWMutex
	set       quote.Set
	updatedAt time.Time
}

func New() *Store { return &Store{set: quote.Set{}} }

// Publish atomically replaces the cached set.
func (s *Store) Publish(set quote.Set, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = set
	s.updatedAt = at
}

// Snapshot returns the cached set and when it was published. The
// returned slice must not be mutated by callers.
func (s *Store) Snapshot() (quote.Set, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set, s.updatedAt
}

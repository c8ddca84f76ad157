// Package pending holds short-lived interaction state, such as an armed
// nuke confirmation waiting for its modal. Entries expire on a TTL and the
// store is capped, so abandoned flows cannot grow it for the process
// lifetime.
package pending

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type entry struct {
	value    string
	armedAt  time.Time
	deadline time.Time
}

type Store struct {
	mu         sync.Mutex
	clock      Clock
	ttl        time.Duration
	maxEntries int
	entries    map[string]entry
}

func New(ttl time.Duration, maxEntries int) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &Store{
		clock:      realClock{},
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]entry),
	}
}

func (s *Store) WithClock(clock Clock) {
	s.clock = clock
}

// Arm records a pending confirmation for key, evicting the oldest entry
// when the store is full.
func (s *Store) Arm(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.sweepLocked(now)

	if len(s.entries) >= s.maxEntries {
		s.evictOldestLocked()
	}
	s.entries[key] = entry{value: value, armedAt: now, deadline: now.Add(s.ttl)}
}

// Consume removes and returns the entry for key. A missing or expired
// entry yields ok=false; the confirmation must be re-armed.
func (s *Store) Consume(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.entries[key]
	if !ok {
		return "", false
	}
	delete(s.entries, key)
	if s.clock.Now().After(item.deadline) {
		return "", false
	}
	return item.value, true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.clock.Now())
	return len(s.entries)
}

func (s *Store) sweepLocked(now time.Time) {
	for key, item := range s.entries {
		if now.After(item.deadline) {
			delete(s.entries, key)
		}
	}
}

func (s *Store) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, item := range s.entries {
		if first || item.armedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = item.armedAt
			first = false
		}
	}
	if !first {
		delete(s.entries, oldestKey)
	}
}

// Package session keeps the per-operator category allow-list between
// requests. Sessions live in memory only, keyed by uuid, and expire after
// an idle TTL. Expired entries are evicted lazily on access; there is no
// background sweeper.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is a mutex-guarded in-memory session store. The zero value is not
// usable; create one with NewStore.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

type entry struct {
	categories []string
	lastSeen   time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for idle tracking. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store whose sessions expire after ttl of inactivity.
// A non-positive ttl keeps sessions forever.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session initialized with the built-in defaults and
// returns its id together with the list.
func (s *Store) Create() (string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()

	id := uuid.New().String()
	s.sessions[id] = &entry{
		categories: DefaultCategories(),
		lastSeen:   s.now(),
	}
	return id, DefaultCategories()
}

// Get returns the session's allow-list and refreshes its idle timer. The
// second return is false when the session does not exist or has expired.
func (s *Store) Get(id string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return copyList(e.categories), true
}

// Set replaces the session's allow-list. It reports false when the session
// does not exist or has expired.
func (s *Store) Set(id string, categories []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()

	e, ok := s.sessions[id]
	if !ok {
		return false
	}
	e.categories = copyList(categories)
	e.lastSeen = s.now()
	return true
}

// Restore resets the session's allow-list to the built-in defaults and
// returns them. It reports false when the session does not exist or has
// expired.
func (s *Store) Restore(id string) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.categories = DefaultCategories()
	e.lastSeen = s.now()
	return DefaultCategories(), true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()
	return len(s.sessions)
}

// evictExpired drops idle sessions. Callers must hold the lock.
func (s *Store) evictExpired() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}

func copyList(categories []string) []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

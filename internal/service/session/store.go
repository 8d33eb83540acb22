// Package session keeps per-conversation history in process memory.
// Nothing here survives a restart; the assistant's policy text promises
// users their chat history is cleared hourly, and eviction enforces it.
package session

import (
	"sync"
	"time"

	"github.com/sandevgo/edabot/internal/core"
)

const DefaultTTL = time.Hour

type record struct {
	createdAt time.Time
	lastSeen  time.Time
	history   []core.Turn
}

// Store owns every session. History slices never leave the store;
// callers get copies.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*record
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*record),
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetOrCreate returns a copy of the session's history, creating an empty
// session for unseen or expired ids. Expired sessions are swept on every
// access, so a stale id behaves exactly like a new one.
func (s *Store) GetOrCreate(id string) []core.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	rec, ok := s.sessions[id]
	if !ok {
		rec = &record{createdAt: now}
		s.sessions[id] = rec
	}
	rec.lastSeen = now

	history := make([]core.Turn, len(rec.history))
	copy(history, rec.history)
	return history
}

// Append adds turns in arrival order. If the session was evicted between
// GetOrCreate and Append it is re-created; concurrent calls against one
// id may interleave their turns, which is accepted.
func (s *Store) Append(id string, turns ...core.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.sessions[id]
	if !ok {
		rec = &record{createdAt: now}
		s.sessions[id] = rec
	}
	rec.lastSeen = now
	rec.history = append(rec.history, turns...)
}

// Sweep discards every session idle longer than the TTL and reports how
// many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

func (s *Store) sweepLocked(now time.Time) int {
	removed := 0
	for id, rec := range s.sessions {
		if now.Sub(rec.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SetClock replaces the time source, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

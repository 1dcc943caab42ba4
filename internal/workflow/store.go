package workflow

import (
	"sync"

	"maya-studio/internal/gateway"
)

// Store keeps one Session per session key. Sessions live only in memory for
// the lifetime of the process; there is no durable storage.
type Store struct {
	mu sync.Mutex
	m  map[string]*sessionEntry
}

// sessionEntry pairs the session with its epoch. Reset bumps the epoch so
// that generation calls settling after a reset can be discarded.
type sessionEntry struct {
	sess  Session
	epoch uint64
}

func NewStore() *Store {
	return &Store{m: make(map[string]*sessionEntry)}
}

// Get returns a snapshot, creating the session on first use.
func (s *Store) Get(key string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return snapshot(s.getOrCreateLocked(key).sess)
}

// Update applies fn to the session and returns the resulting snapshot.
func (s *Store) Update(key string, fn func(*Session)) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.getOrCreateLocked(key)
	if fn != nil {
		fn(&entry.sess)
	}
	return snapshot(entry.sess)
}

// Epoch returns the session's current epoch.
func (s *Store) Epoch(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(key).epoch
}

// UpdateIfEpoch applies fn only when the session's epoch still matches,
// reporting whether the update was applied. A mismatch means the session was
// reset while a generation call was in flight; the stale result is dropped.
func (s *Store) UpdateIfEpoch(key string, epoch uint64, fn func(*Session)) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.getOrCreateLocked(key)
	if entry.epoch != epoch {
		return snapshot(entry.sess), false
	}
	if fn != nil {
		fn(&entry.sess)
	}
	return snapshot(entry.sess), true
}

// Reset restores the session to its initial state and bumps the epoch.
func (s *Store) Reset(key string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.getOrCreateLocked(key)
	entry.sess = defaultSession()
	entry.epoch++
	return snapshot(entry.sess)
}

func (s *Store) getOrCreateLocked(key string) *sessionEntry {
	if entry, ok := s.m[key]; ok {
		return entry
	}
	entry := &sessionEntry{sess: defaultSession()}
	s.m[key] = entry
	return entry
}

func snapshot(sess Session) Session {
	sess.Messages = append([]ChatMessage(nil), sess.Messages...)
	sess.Captions = append([]gateway.Caption(nil), sess.Captions...)
	if sess.Inspiration != nil {
		insp := *sess.Inspiration
		sess.Inspiration = &insp
	}
	if sess.GeneratedImage != nil {
		img := *sess.GeneratedImage
		sess.GeneratedImage = &img
	}
	return sess
}

package services

import (
	"sync"

	"github.com/google/uuid"
)

// SessionLocks serializes mutations per session. Advance and answer
// recording for the same session are not commutative; different sessions
// are fully independent.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Acquire locks the session and returns its unlock function.
func (s *SessionLocks) Acquire(sessionID uuid.UUID) func() {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

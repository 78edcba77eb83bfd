package memory

import (
	"sync"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// SessionStore is the in-memory implementation of app.SessionRepository.
// One mutex guards the room map, which makes concurrent first-joins to the
// same room converge on a single session.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(roomID string, quiz domain.Quiz) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[roomID]; ok {
		return session, false
	}
	session := app.NewSession(roomID, quiz)
	s.sessions[roomID] = session
	return session, true
}

func (s *SessionStore) Get(roomID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[roomID]
	return session, ok
}

func (s *SessionStore) DeleteIfEmpty(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[roomID]
	if !ok || !session.IsEmpty() {
		return false
	}
	delete(s.sessions, roomID)
	return true
}

package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions themselves stay in a local map because the room's broadcast
//     fan-out and timers are in-process state.
//   - Redis marks session liveness so operators can see which rooms are
//     live across instances (and it could be extended to cross-instance
//     routing via pub/sub).
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(roomID), quiz.ID, s.ttl).Err()
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
	_ = s.client.Del(context.Background(), s.key(roomID)).Err()
	return true
}

func (s *SessionStore) key(roomID string) string {
	return "quiz:session:" + roomID
}

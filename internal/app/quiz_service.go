package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/metrics"
)

// SessionRepository abstracts how live sessions are registered (in-memory,
// Redis-marked, etc). GetOrCreate must be idempotent per room: concurrent
// first-joins to the same room observe a single session.
type SessionRepository interface {
	GetOrCreate(roomID string, quiz domain.Quiz) (*Session, bool)
	Get(roomID string) (*Session, bool)
	DeleteIfEmpty(roomID string) bool
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultStore persists per-participant completion records and refreshes
// quiz-level aggregates.
type ResultStore interface {
	SaveResult(ctx context.Context, result domain.QuizResult) error
	RefreshQuizStats(ctx context.Context, quizID string) error
}

// AnalyticsRecorder increments question-level answer counters. Calls are
// fire-and-forget from the session's perspective.
type AnalyticsRecorder interface {
	RecordAnswer(ctx context.Context, questionID string, correct bool) error
}

// Policy holds the session behavior knobs that the original system left
// implicit.
type Policy struct {
	// DefaultQuestionSeconds applies when neither the question nor the
	// quiz defines a time limit.
	DefaultQuestionSeconds int
	// HostControls restricts start/advance to the host (earliest joiner)
	// when true. False matches the permissive original behavior.
	HostControls bool
}

// QuizService contains the live session use cases: join, start, submit,
// advance, finish, leaderboard, disconnect.
type QuizService struct {
	sessions  SessionRepository
	quizzes   QuizRepository
	results   ResultStore
	analytics AnalyticsRecorder
	policy    Policy
	log       *zap.Logger

	afterFunc func(d time.Duration, f func()) *time.Timer
}

// Option customizes a QuizService.
type Option func(*QuizService)

// WithAfterFunc replaces the timer constructor; tests use this to fire
// auto-advance callbacks deterministically.
func WithAfterFunc(f func(d time.Duration, fn func()) *time.Timer) Option {
	return func(s *QuizService) { s.afterFunc = f }
}

func NewQuizService(sessions SessionRepository, quizzes QuizRepository, results ResultStore, analytics AnalyticsRecorder, policy Policy, log *zap.Logger, opts ...Option) *QuizService {
	if policy.DefaultQuestionSeconds <= 0 {
		policy.DefaultQuestionSeconds = 30
	}
	s := &QuizService{
		sessions:  sessions,
		quizzes:   quizzes,
		results:   results,
		analytics: analytics,
		policy:    policy,
		log:       log,
		afterFunc: time.AfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSession is exported for infrastructure layers that register sessions.
func NewSession(roomID string, quiz domain.Quiz) *Session {
	return newSession(roomID, quiz)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(roomID string, quiz domain.Quiz, now func() time.Time) *Session {
	return newSessionWithClock(roomID, quiz, now)
}

// Join loads the quiz, registers the session for the room, and inserts the
// participant. The returned summary goes to the joining connection only;
// the room hears user-joined through its subscriptions.
func (s *QuizService) Join(ctx context.Context, roomID, quizID, connID, userID, displayName string) (domain.JoinResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.JoinResult{}, fmt.Errorf("load quiz %q: %w", quizID, err)
	}
	if quiz.DefaultTimeLimitSeconds <= 0 {
		quiz.DefaultTimeLimitSeconds = s.policy.DefaultQuestionSeconds
	}

	// GetOrCreate and join are separate critical sections, so a concurrent
	// last-disconnect can tear the session down in between. Re-check the
	// registry after joining and retry against a fresh session when it did.
	for {
		session, created := s.sessions.GetOrCreate(roomID, quiz)
		if created {
			metrics.ActiveSessions.Inc()
			s.log.Info("session created", zap.String("room", roomID), zap.String("quiz", quizID))
		}
		result := session.join(connID, userID, displayName)
		if current, ok := s.sessions.Get(roomID); ok && current == session {
			metrics.EventsTotal.WithLabelValues("join").Inc()
			return result, nil
		}
		session.leave(connID)
	}
}

// Subscribe returns the room's event channel for a connection. The caller
// must invoke the cancel function.
func (s *QuizService) Subscribe(roomID string) (<-chan domain.Event, func(), error) {
	session, ok := s.sessions.Get(roomID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Start activates the room's session on its first question and arms the
// auto-advance timer. No-op when the room has no session.
func (s *QuizService) Start(roomID, connID string) error {
	session, ok := s.sessions.Get(roomID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.policy.HostControls && !session.isHost(connID) {
		return domain.ErrNotHost
	}

	limit, started := session.start()
	metrics.EventsTotal.WithLabelValues("start").Inc()
	if !started {
		s.log.Info("session has no questions, ended immediately", zap.String("room", roomID))
		return nil
	}
	s.log.Info("session started", zap.String("room", roomID))
	s.armTimer(roomID, session, 0, limit)
	return nil
}

// Advance moves the room to the next question (or to completion). Explicit
// client advances route through here with fromIndex -1.
func (s *QuizService) Advance(roomID, connID string) error {
	session, ok := s.sessions.Get(roomID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	if s.policy.HostControls && !session.isHost(connID) {
		return domain.ErrNotHost
	}
	s.advanceSession(roomID, session, -1)
	metrics.EventsTotal.WithLabelValues("advance").Inc()
	return nil
}

// advanceSession is the single code path for both explicit advances and
// timer fires.
func (s *QuizService) advanceSession(roomID string, session *Session, fromIndex int) {
	index, limit, outcome := session.advance(fromIndex)
	switch outcome {
	case advanceStale:
		metrics.StaleDropsTotal.Inc()
		s.log.Debug("stale advance dropped",
			zap.String("room", roomID), zap.Int("armedIndex", fromIndex))
	case advanceNext:
		s.armTimer(roomID, session, index, limit)
	case advanceFinished:
		s.log.Info("session ran out of questions", zap.String("room", roomID))
	}
}

// armTimer schedules the auto-advance for the question index currently
// showing. The index travels with the timer so a fire that arrives after
// an explicit advance is discarded inside Session.advance.
func (s *QuizService) armTimer(roomID string, session *Session, index int, limit time.Duration) {
	if limit <= 0 {
		limit = time.Duration(s.policy.DefaultQuestionSeconds) * time.Second
	}
	t := s.afterFunc(limit, func() {
		s.advanceSession(roomID, session, index)
	})
	session.setTimer(t, index)
}

// SubmitAnswer evaluates a participant's answer. Late, duplicate, or
// otherwise stale submissions surface sentinel errors that the transport
// drops silently (logged here for observability).
func (s *QuizService) SubmitAnswer(ctx context.Context, roomID, connID string, sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	session, ok := s.sessions.Get(roomID)
	if !ok {
		metrics.StaleDropsTotal.Inc()
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}

	result, err := session.submit(connID, sub)
	if err != nil {
		metrics.StaleDropsTotal.Inc()
		s.log.Debug("submission dropped",
			zap.String("room", roomID),
			zap.String("question", sub.QuestionID),
			zap.Error(err))
		return domain.AnswerResult{}, err
	}

	outcome := "incorrect"
	if result.Correct {
		outcome = "correct"
	}
	metrics.AnswersTotal.WithLabelValues(outcome).Inc()
	metrics.EventsTotal.WithLabelValues("submit").Inc()

	// Question-level counters are analytics, not session state: record in
	// the background and only log failures.
	go func() {
		if err := s.analytics.RecordAnswer(context.Background(), sub.QuestionID, result.Correct); err != nil {
			s.log.Warn("analytics counter update failed",
				zap.String("question", sub.QuestionID), zap.Error(err))
		}
	}()

	return result, nil
}

// Finish completes the quiz for one participant: summary, leaderboard rank,
// best-effort persistence, then removal. A persistence failure is returned
// alongside the already-computed summary; in-memory state is not rolled
// back.
func (s *QuizService) Finish(ctx context.Context, roomID, connID string) (domain.FinishResult, error) {
	session, ok := s.sessions.Get(roomID)
	if !ok {
		return domain.FinishResult{}, domain.ErrSessionNotFound
	}

	result, record, empty, err := session.finish(connID)
	if err != nil {
		return domain.FinishResult{}, err
	}
	metrics.EventsTotal.WithLabelValues("finish").Inc()

	if empty {
		s.dropSession(roomID)
	}

	if err := s.results.SaveResult(ctx, record); err != nil {
		s.log.Error("result persistence failed",
			zap.String("room", roomID), zap.String("user", record.UserID), zap.Error(err))
		return result, fmt.Errorf("save result: %w", err)
	}

	go func() {
		if err := s.results.RefreshQuizStats(context.Background(), record.QuizID); err != nil {
			s.log.Warn("quiz stats refresh failed",
				zap.String("quiz", record.QuizID), zap.Error(err))
		}
	}()

	return result, nil
}

// Leaderboard returns the room's current standings without mutating state.
func (s *QuizService) Leaderboard(roomID string) (domain.Leaderboard, error) {
	session, ok := s.sessions.Get(roomID)
	if !ok {
		return domain.Leaderboard{}, domain.ErrSessionNotFound
	}
	metrics.EventsTotal.WithLabelValues("leaderboard").Inc()
	return session.leaderboard(), nil
}

// Disconnect removes the connection's participant, if any, and tears down
// the session when the room empties. Unfinished progress is dropped.
func (s *QuizService) Disconnect(roomID, connID string) {
	session, ok := s.sessions.Get(roomID)
	if !ok {
		return
	}
	removed, empty := session.leave(connID)
	if removed {
		metrics.EventsTotal.WithLabelValues("disconnect").Inc()
	}
	if empty {
		s.dropSession(roomID)
	}
}

func (s *QuizService) dropSession(roomID string) {
	if s.sessions.DeleteIfEmpty(roomID) {
		metrics.ActiveSessions.Dec()
		s.log.Info("session removed", zap.String("room", roomID))
	}
}

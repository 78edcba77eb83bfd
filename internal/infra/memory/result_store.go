package memory

import (
	"context"
	"sync"

	"live-quiz-service/internal/domain"
)

// ResultStore keeps completion records in memory. It backs tests and the
// no-database demo mode; durable storage lives in the postgres adapter.
type ResultStore struct {
	mu      sync.Mutex
	results []domain.QuizResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

func (s *ResultStore) RefreshQuizStats(_ context.Context, _ string) error {
	return nil
}

// Results returns a copy of everything saved so far.
func (s *ResultStore) Results() []domain.QuizResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.QuizResult(nil), s.results...)
}

// AnalyticsRecorder counts answers per question in memory.
type AnalyticsRecorder struct {
	mu       sync.Mutex
	answered map[string]int
	correct  map[string]int
}

func NewAnalyticsRecorder() *AnalyticsRecorder {
	return &AnalyticsRecorder{
		answered: make(map[string]int),
		correct:  make(map[string]int),
	}
}

func (a *AnalyticsRecorder) RecordAnswer(_ context.Context, questionID string, wasCorrect bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.answered[questionID]++
	if wasCorrect {
		a.correct[questionID]++
	}
	return nil
}

// Counts returns (answered, correct) for a question.
func (a *AnalyticsRecorder) Counts(questionID string) (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.answered[questionID], a.correct[questionID]
}

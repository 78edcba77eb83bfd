package memory

import (
	"context"
	"testing"
	"time"

	"live-quiz-service/internal/domain"
)

func TestQuizRepositoryCachesLoads(t *testing.T) {
	loader := &countingLoader{
		QuizLoader: NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": {ID: "quiz-1", Questions: []domain.Question{{ID: "q1"}}},
		}),
	}
	repo := NewQuizRepository(loader, time.Minute)

	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit cache, loader not incremented.
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestStaticLoaderReportsMissingQuiz(t *testing.T) {
	loader := NewStaticQuizLoader(nil)
	if _, err := loader.LoadQuiz(context.Background(), "nope"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

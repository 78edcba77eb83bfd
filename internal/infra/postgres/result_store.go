package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"live-quiz-service/internal/domain"
)

// ResultStore persists completion records and quiz-level aggregates.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, result domain.QuizResult) error {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quiz_results (user_id, quiz_id, room_id, answers, score, max_score, percentage, completed, completed_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9)`,
		result.UserID, result.QuizID, result.RoomID, string(answers),
		result.Score, result.MaxScore, result.Percentage, result.Completed, result.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// RefreshQuizStats recomputes the quiz aggregate row from all stored
// results. Runs after each completion, off the session's critical path.
func (s *ResultStore) RefreshQuizStats(ctx context.Context, quizID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_stats (quiz_id, attempts, avg_score, avg_percentage, updated_at)
		SELECT quiz_id, COUNT(*), AVG(score), AVG(percentage), now()
		FROM quiz_results WHERE quiz_id=$1 GROUP BY quiz_id
		ON CONFLICT (quiz_id) DO UPDATE SET
			attempts = EXCLUDED.attempts,
			avg_score = EXCLUDED.avg_score,
			avg_percentage = EXCLUDED.avg_percentage,
			updated_at = EXCLUDED.updated_at`, quizID)
	if err != nil {
		return fmt.Errorf("refresh quiz stats: %w", err)
	}
	return nil
}

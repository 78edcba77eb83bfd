package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// AnalyticsRecorder keeps per-question answer counters in a Redis hash:
// HINCRBY quiz:question:{questionID}:stats answered|correct 1.
type AnalyticsRecorder struct {
	client *redis.Client
}

func NewAnalyticsRecorder(client *redis.Client) *AnalyticsRecorder {
	return &AnalyticsRecorder{client: client}
}

func (a *AnalyticsRecorder) RecordAnswer(ctx context.Context, questionID string, wasCorrect bool) error {
	key := a.key(questionID)
	pipe := a.client.Pipeline()
	pipe.HIncrBy(ctx, key, "answered", 1)
	if wasCorrect {
		pipe.HIncrBy(ctx, key, "correct", 1)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (a *AnalyticsRecorder) key(questionID string) string {
	return "quiz:question:" + questionID + ":stats"
}

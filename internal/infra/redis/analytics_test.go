package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAnalyticsRecorderIncrementsCounters(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	recorder := NewAnalyticsRecorder(client)

	ctx := context.Background()
	if err := recorder.RecordAnswer(ctx, "q1", true); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := recorder.RecordAnswer(ctx, "q1", false); err != nil {
		t.Fatalf("record: %v", err)
	}

	if got := mr.HGet("quiz:question:q1:stats", "answered"); got != "2" {
		t.Fatalf("expected answered=2, got %q", got)
	}
	if got := mr.HGet("quiz:question:q1:stats", "correct"); got != "1" {
		t.Fatalf("expected correct=1, got %q", got)
	}
}

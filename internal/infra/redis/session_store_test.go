package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/domain"
)

func TestSessionStoreSetsAndClearsLivenessKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	if _, created := store.GetOrCreate("room-1", domain.Quiz{ID: "quiz-1"}); !created {
		t.Fatalf("expected session to be created")
	}
	if !mr.Exists("quiz:session:room-1") {
		t.Fatalf("expected redis liveness key to be set")
	}

	if !store.DeleteIfEmpty("room-1") {
		t.Fatalf("expected empty session removal")
	}
	if mr.Exists("quiz:session:room-1") {
		t.Fatalf("expected redis liveness key to be removed")
	}
}

package memory

import (
	"testing"

	"live-quiz-service/internal/domain"
)

func TestGetOrCreateIsIdempotentPerRoom(t *testing.T) {
	store := NewSessionStore()
	quiz := domain.Quiz{ID: "quiz-1"}

	first, created := store.GetOrCreate("room-1", quiz)
	if !created {
		t.Fatalf("expected first call to create")
	}
	second, created := store.GetOrCreate("room-1", quiz)
	if created || second != first {
		t.Fatalf("expected same session back, created=%v", created)
	}
}

func TestDeleteIfEmptyOnlyRemovesEmptySessions(t *testing.T) {
	store := NewSessionStore()
	store.GetOrCreate("room-1", domain.Quiz{ID: "quiz-1"})

	if !store.DeleteIfEmpty("room-1") {
		t.Fatalf("expected empty session to be removed")
	}
	if _, ok := store.Get("room-1"); ok {
		t.Fatalf("expected session gone")
	}
	if store.DeleteIfEmpty("room-1") {
		t.Fatalf("expected no-op for missing room")
	}
}

package app

import (
	"testing"

	"live-quiz-service/internal/domain"
)

func TestBuildLeaderboardTieBreaksByJoinOrder(t *testing.T) {
	participants := map[string]*domain.Participant{
		"c1": {ConnectionID: "c1", DisplayName: "Alice", Score: 50, JoinOrder: 1},
		"c2": {ConnectionID: "c2", DisplayName: "Bob", Score: 50, JoinOrder: 2},
		"c3": {ConnectionID: "c3", DisplayName: "Carol", Score: 30, JoinOrder: 3},
	}

	entries := buildLeaderboard(participants, 100, true)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []struct {
		name string
		rank int
		pct  float64
	}{
		{"Alice", 1, 50},
		{"Bob", 2, 50},
		{"Carol", 3, 30},
	}
	for i, w := range want {
		if entries[i].DisplayName != w.name || entries[i].Rank != w.rank || entries[i].Percentage != w.pct {
			t.Fatalf("entry %d: got %+v, want %+v", i, entries[i], w)
		}
	}

	if rank := rankOf(participants, "c2"); rank != 2 {
		t.Fatalf("expected rank 2 for c2, got %d", rank)
	}
	if rank := rankOf(participants, "missing"); rank != 0 {
		t.Fatalf("expected rank 0 for absent connection, got %d", rank)
	}
}

func TestEvaluateChoiceAndFillIn(t *testing.T) {
	mc := domain.Question{
		Type: domain.MultipleChoice,
		Options: []domain.Option{
			{Text: "Paris", Correct: true},
			{Text: "Lyon"},
		},
		Points: 10,
	}
	if correct, awarded, revealed := evaluate(mc, "Paris"); !correct || awarded != 10 || revealed != "Paris" {
		t.Fatalf("expected exact match to score, got correct=%v awarded=%d revealed=%q", correct, awarded, revealed)
	}
	if correct, awarded, _ := evaluate(mc, "paris"); correct || awarded != 0 {
		t.Fatalf("choice matching must be case-sensitive")
	}

	fib := domain.Question{Type: domain.FillInBlank, CorrectAnswer: "Paris", Points: 5}
	for _, answer := range []string{" paris ", "PARIS", "Paris"} {
		if correct, awarded, _ := evaluate(fib, answer); !correct || awarded != 5 {
			t.Fatalf("expected %q to match after normalization", answer)
		}
	}
	if correct, _, _ := evaluate(fib, "London"); correct {
		t.Fatalf("wrong fill-in answer must not match")
	}

	// Zero points default to 1.
	one := domain.Question{Type: domain.TrueFalse, Options: []domain.Option{{Text: "True", Correct: true}, {Text: "False"}}}
	if _, awarded, _ := evaluate(one, "True"); awarded != 1 {
		t.Fatalf("expected default 1 point, got %d", awarded)
	}
}

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
)

func TestWebSocketSessionFlow(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	alice := dial(t, server, "room-1", "u1", "Alice")
	defer alice.Close()

	if typ, _ := readNext(alice, t, domain.EventQuizJoined); typ != domain.EventQuizJoined {
		t.Fatalf("expected quiz-joined, got %s", typ)
	}

	bob := dial(t, server, "room-1", "u2", "Bob")
	defer bob.Close()
	readNext(bob, t, domain.EventQuizJoined)

	// Alice, already subscribed, hears about Bob.
	typ, payload := readNext(alice, t, domain.EventUserJoined)
	if typ != domain.EventUserJoined || payload["participantCount"] != float64(2) {
		t.Fatalf("expected user-joined with count 2, got %s %v", typ, payload)
	}

	// Start the quiz; both clients receive the start marker and the first
	// sanitized question.
	writeEvent(t, alice, "start-quiz", nil)
	readNext(alice, t, domain.EventQuizStarted)
	_, question := readNext(alice, t, domain.EventQuestion)
	if question["text"] == "" || question["questionNumber"] != float64(1) {
		t.Fatalf("unexpected question payload: %v", question)
	}
	if _, ok := question["options"].([]any); !ok {
		t.Fatalf("expected sanitized option list, got %v", question["options"])
	}
	readNext(bob, t, domain.EventQuizStarted)
	readNext(bob, t, domain.EventQuestion)

	// Submit an answer; only the submitter sees the result.
	writeEvent(t, alice, "submit-answer", map[string]any{
		"questionId":     "q1",
		"selectedAnswer": "Paris",
		"timeSpent":      3,
	})
	_, result := readNext(alice, t, domain.EventAnswerResult)
	if result["correct"] != true || result["totalScore"] != float64(10) {
		t.Fatalf("unexpected answer result: %v", result)
	}

	writeEvent(t, alice, "get-leaderboard", nil)
	_, lb := readNext(alice, t, domain.EventLeaderboard)
	if lb["roomId"] != "room-1" {
		t.Fatalf("unexpected leaderboard payload: %v", lb)
	}

	// A late duplicate submit is swallowed, not answered with an error.
	writeEvent(t, alice, "submit-answer", map[string]any{
		"questionId":     "q1",
		"selectedAnswer": "Paris",
	})

	writeEvent(t, alice, "finish-quiz", nil)
	completed := readUntil(alice, t, domain.EventQuizCompleted)
	if completed["finalScore"] != float64(10) || completed["rank"] != float64(1) {
		t.Fatalf("unexpected completion payload: %v", completed)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewSessionStore()
	quizRepo := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuizzes()), time.Minute)
	service := app.NewQuizService(store, quizRepo, memory.NewResultStore(), memory.NewAnalyticsRecorder(), app.Policy{}, zap.NewNop())
	wsHandler := NewWSHandler(service, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux)
}

func dial(t *testing.T, server *httptest.Server, roomID, userID, name string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?roomId=" + roomID + "&quizId=quiz-1&userId=" + userID + "&name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func writeEvent(t *testing.T, conn *websocket.Conn, typ string, payload map[string]any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

// readUntil skips interleaved broadcasts (user-left, leaderboard) whose
// order relative to direct responses is not fixed.
func readUntil(conn *websocket.Conn, t *testing.T, want string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		typ, payload := readNext(conn, t, "")
		if typ == want {
			return payload
		}
		if typ == domain.EventError {
			t.Fatalf("unexpected error event: %v", payload)
		}
	}
	t.Fatalf("never received %s", want)
	return nil
}

func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:                      "quiz-1",
			Title:                   "Capitals",
			DefaultTimeLimitSeconds: 30,
			Questions: []domain.Question{
				{
					ID:   "q1",
					Text: "What is the capital of France?",
					Type: domain.MultipleChoice,
					Options: []domain.Option{
						{Text: "Paris", Correct: true},
						{Text: "Lyon"},
						{Text: "Marseille"},
					},
					Points: 10,
				},
				{
					ID:            "q2",
					Text:          "Name the capital of Japan.",
					Type:          domain.FillInBlank,
					CorrectAnswer: "Tokyo",
					Points:        10,
				},
			},
		},
	}
}

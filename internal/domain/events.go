package domain

// Event is the envelope broadcast to room subscribers and written to
// websocket clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Outbound event types.
const (
	EventQuizJoined    = "quiz-joined"
	EventUserJoined    = "user-joined"
	EventQuizStarted   = "quiz-started"
	EventQuestion      = "question"
	EventAnswerResult  = "answer-result"
	EventQuizEnded     = "quiz-ended"
	EventQuizCompleted = "quiz-completed"
	EventLeaderboard   = "leaderboard"
	EventUserLeft      = "user-left"
	EventError         = "error"
)

// UserJoinedPayload accompanies EventUserJoined.
type UserJoinedPayload struct {
	DisplayName      string `json:"displayName"`
	ParticipantCount int    `json:"participantCount"`
}

// UserLeftPayload accompanies EventUserLeft.
type UserLeftPayload struct {
	DisplayName      string `json:"displayName"`
	ParticipantCount int    `json:"participantCount"`
}

// QuizStartedPayload accompanies EventQuizStarted.
type QuizStartedPayload struct {
	StartedAt      int64 `json:"startedAt"`
	TotalQuestions int   `json:"totalQuestions"`
}

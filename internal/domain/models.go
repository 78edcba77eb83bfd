package domain

import "time"

// QuestionType discriminates how a submitted answer is evaluated.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	FillInBlank    QuestionType = "fill-in-blank"
)

// Option represents a possible answer for a question. The Correct flag is
// never sent to participants before evaluation.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models a single quiz question. CorrectAnswer is only meaningful
// for fill-in-blank questions; TimeLimitSeconds of zero falls back to the
// quiz-level default.
type Question struct {
	ID               string       `json:"id"`
	Text             string       `json:"text"`
	Type             QuestionType `json:"type"`
	Options          []Option     `json:"options,omitempty"`
	CorrectAnswer    string       `json:"correctAnswer,omitempty"`
	Points           int          `json:"points"` // defaults to 1 if zero
	TimeLimitSeconds int          `json:"timeLimitSeconds,omitempty"`
}

// Quiz is an ordered collection of questions plus session-level settings.
type Quiz struct {
	ID                      string     `json:"id"`
	Title                   string     `json:"title"`
	Questions               []Question `json:"questions"`
	DefaultTimeLimitSeconds int        `json:"defaultTimeLimitSeconds,omitempty"`
}

// Clone deep-copies the quiz so a running session is immune to later
// mutations of the loaded definition.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	copy(out.Questions, q.Questions)
	for i := range out.Questions {
		opts := make([]Option, len(q.Questions[i].Options))
		copy(opts, q.Questions[i].Options)
		out.Questions[i].Options = opts
	}
	return out
}

// MaxScore sums the point values of all questions.
func (q Quiz) MaxScore() int {
	total := 0
	for _, question := range q.Questions {
		points := question.Points
		if points == 0 {
			points = 1
		}
		total += points
	}
	return total
}

// QuizSummary is the sanitized quiz view sent to a joining participant.
type QuizSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	TotalQuestions int    `json:"totalQuestions"`
}

// AnswerRecord is one entry in a participant's answer log.
type AnswerRecord struct {
	QuestionID       string `json:"questionId"`
	Selected         string `json:"selected"`
	Correct          bool   `json:"correct"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	Points           int    `json:"points"`
}

// Participant tracks one connected client's running state in a session.
type Participant struct {
	ConnectionID string
	UserID       string
	DisplayName  string
	Score        int
	Answers      []AnswerRecord
	JoinOrder    int
	Answered     map[string]struct{} // question IDs already submitted
}

// AnswerSubmission models the scoring signal from clients.
type AnswerSubmission struct {
	QuestionID       string
	SelectedAnswer   string
	TimeSpentSeconds int
}

// AnswerResult summarizes the outcome of a submission for the submitter.
type AnswerResult struct {
	QuestionID    string `json:"questionId"`
	Correct       bool   `json:"correct"`
	Awarded       int    `json:"awarded"`
	TotalScore    int    `json:"totalScore"`
	CorrectAnswer string `json:"correctAnswer"`
}

// QuestionView is the sanitized question payload broadcast to a room:
// option texts only, correctness stripped.
type QuestionView struct {
	ID               string       `json:"id"`
	Text             string       `json:"text"`
	Type             QuestionType `json:"type"`
	Options          []string     `json:"options,omitempty"`
	Points           int          `json:"points"`
	TimeLimitSeconds int          `json:"timeLimitSeconds"`
	QuestionNumber   int          `json:"questionNumber"`
	TotalQuestions   int          `json:"totalQuestions"`
}

// LeaderboardEntry is one ranked row of the standings.
type LeaderboardEntry struct {
	DisplayName string  `json:"displayName"`
	Score       int     `json:"score"`
	Percentage  float64 `json:"percentage,omitempty"`
	Rank        int     `json:"rank"`
}

// Leaderboard captures the ordered standings for a room at a point in time.
type Leaderboard struct {
	RoomID    string             `json:"roomId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// JoinResult is returned to the joining connection only.
type JoinResult struct {
	Quiz             QuizSummary `json:"quiz"`
	ParticipantCount int         `json:"participantCount"`
	IsActive         bool        `json:"isActive"`
}

// FinishResult is the per-participant completion summary.
type FinishResult struct {
	FinalScore  int                `json:"finalScore"`
	MaxScore    int                `json:"maxScore"`
	Percentage  float64            `json:"percentage"`
	Rank        int                `json:"rank"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// QuizResult is the durable completion record handed to the result store.
type QuizResult struct {
	UserID      string         `json:"userId"`
	QuizID      string         `json:"quizId"`
	RoomID      string         `json:"roomId"`
	Answers     []AnswerRecord `json:"answers"`
	Score       int            `json:"score"`
	MaxScore    int            `json:"maxScore"`
	Percentage  float64        `json:"percentage"`
	Completed   bool           `json:"completed"`
	CompletedAt time.Time      `json:"completedAt"`
}

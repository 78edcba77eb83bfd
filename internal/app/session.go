package app

import (
	"sync"
	"time"

	"live-quiz-service/internal/domain"
)

// Session is the in-memory state of one live quiz run, scoped to a room.
// All mutation goes through its mutex; the auto-advance timer carries the
// question index it was armed for so a stale fire is discarded instead of
// double-advancing.
type Session struct {
	roomID    string
	quiz      domain.Quiz
	createdAt time.Time
	now       func() time.Time

	mu           sync.Mutex
	participants map[string]*domain.Participant
	joinSeq      int
	hostConn     string
	currentIndex int // -1 until start
	isActive     bool
	startTime    time.Time
	subscribers  map[chan domain.Event]struct{}

	timer *time.Timer
}

func newSession(roomID string, quiz domain.Quiz) *Session {
	return newSessionWithClock(roomID, quiz, time.Now)
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(roomID string, quiz domain.Quiz, now func() time.Time) *Session {
	return &Session{
		roomID:       roomID,
		quiz:         quiz.Clone(),
		createdAt:    now(),
		now:          now,
		participants: make(map[string]*domain.Participant),
		currentIndex: -1,
		subscribers:  make(map[chan domain.Event]struct{}),
	}
}

// IsEmpty reports whether the session has no participants.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants) == 0
}

// join inserts or overwrites a participant keyed by connection ID. A rejoin
// under the same connection resets progress (overwrite, not merge). The
// joiner is not yet subscribed, so the user-joined broadcast reaches only
// the participants already in the room.
func (s *Session) join(connID, userID, displayName string) domain.JoinResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.joinSeq++
	s.participants[connID] = &domain.Participant{
		ConnectionID: connID,
		UserID:       userID,
		DisplayName:  displayName,
		JoinOrder:    s.joinSeq,
		Answered:     make(map[string]struct{}),
	}
	if s.hostConn == "" {
		s.hostConn = connID
	}

	s.broadcastLocked(domain.Event{
		Type: domain.EventUserJoined,
		Payload: domain.UserJoinedPayload{
			DisplayName:      displayName,
			ParticipantCount: len(s.participants),
		},
	})

	return domain.JoinResult{
		Quiz: domain.QuizSummary{
			ID:             s.quiz.ID,
			Title:          s.quiz.Title,
			TotalQuestions: len(s.quiz.Questions),
		},
		ParticipantCount: len(s.participants),
		IsActive:         s.isActive,
	}
}

// isHost reports whether the connection currently holds the host role.
func (s *Session) isHost(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostConn == connID
}

// start activates the session on question zero and broadcasts the first
// sanitized question. Returns the time limit the caller should arm the
// auto-advance timer with. A quiz with no questions never activates: the
// room hears quiz-ended right away and started is false.
func (s *Session) start() (limit time.Duration, started bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A restart supersedes any timer armed for the previous run.
	s.stopTimerLocked()

	if len(s.quiz.Questions) == 0 {
		s.isActive = false
		s.broadcastLocked(domain.Event{Type: domain.EventQuizEnded, Payload: struct{}{}})
		return 0, false
	}

	s.isActive = true
	s.startTime = s.now()
	s.currentIndex = 0

	s.broadcastLocked(domain.Event{
		Type: domain.EventQuizStarted,
		Payload: domain.QuizStartedPayload{
			StartedAt:      s.startTime.Unix(),
			TotalQuestions: len(s.quiz.Questions),
		},
	})
	view, limit := s.questionViewLocked()
	s.broadcastLocked(domain.Event{Type: domain.EventQuestion, Payload: view})
	return limit, true
}

type advanceOutcome int

const (
	advanceStale advanceOutcome = iota
	advanceNext
	advanceFinished
)

// advance moves the session to the next question. fromIndex >= 0 marks a
// timer-initiated advance: it only proceeds if the session still sits on
// that index, which is what defuses the timer/explicit-advance race.
func (s *Session) advance(fromIndex int) (int, time.Duration, advanceOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isActive {
		return 0, 0, advanceStale
	}
	if fromIndex >= 0 && fromIndex != s.currentIndex {
		return 0, 0, advanceStale
	}

	s.stopTimerLocked()
	s.currentIndex++
	if s.currentIndex >= len(s.quiz.Questions) {
		s.isActive = false
		s.broadcastLocked(domain.Event{Type: domain.EventQuizEnded, Payload: struct{}{}})
		return s.currentIndex, 0, advanceFinished
	}

	view, limit := s.questionViewLocked()
	s.broadcastLocked(domain.Event{Type: domain.EventQuestion, Payload: view})
	return s.currentIndex, limit, advanceNext
}

// setTimer installs the auto-advance timer armed for idx, superseding any
// older timer. A timer armed for an index the session already left is
// stopped instead of installed.
func (s *Session) setTimer(t *time.Timer, idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentIndex != idx || !s.isActive {
		t.Stop()
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = t
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// submit evaluates and records an answer for the participant. The caller
// maps sentinel errors to the lenient drop policy.
func (s *Session) submit(connID string, sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isActive {
		return domain.AnswerResult{}, domain.ErrSessionInactive
	}
	participant, ok := s.participants[connID]
	if !ok {
		return domain.AnswerResult{}, domain.ErrParticipantNotFound
	}
	question, ok := s.findQuestionLocked(sub.QuestionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrQuestionNotFound
	}
	if _, dup := participant.Answered[sub.QuestionID]; dup {
		return domain.AnswerResult{}, domain.ErrAlreadyAnswered
	}

	correct, awarded, revealed := evaluate(question, sub.SelectedAnswer)
	participant.Score += awarded
	participant.Answered[sub.QuestionID] = struct{}{}
	participant.Answers = append(participant.Answers, domain.AnswerRecord{
		QuestionID:       sub.QuestionID,
		Selected:         sub.SelectedAnswer,
		Correct:          correct,
		TimeSpentSeconds: sub.TimeSpentSeconds,
		Points:           awarded,
	})

	return domain.AnswerResult{
		QuestionID:    sub.QuestionID,
		Correct:       correct,
		Awarded:       awarded,
		TotalScore:    participant.Score,
		CorrectAnswer: revealed,
	}, nil
}

// finish computes the participant's completion summary against the current
// room population, removes them, and hands back the durable record.
func (s *Session) finish(connID string) (domain.FinishResult, domain.QuizResult, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.participants[connID]
	if !ok {
		return domain.FinishResult{}, domain.QuizResult{}, false, domain.ErrParticipantNotFound
	}

	maxScore := s.quiz.MaxScore()
	percentage := 0.0
	if maxScore > 0 {
		percentage = float64(participant.Score*100) / float64(maxScore)
	}

	entries := buildLeaderboard(s.participants, maxScore, true)
	rank := rankOf(s.participants, connID)

	record := domain.QuizResult{
		UserID:      participant.UserID,
		QuizID:      s.quiz.ID,
		RoomID:      s.roomID,
		Answers:     append([]domain.AnswerRecord(nil), participant.Answers...),
		Score:       participant.Score,
		MaxScore:    maxScore,
		Percentage:  percentage,
		Completed:   true,
		CompletedAt: s.now(),
	}

	s.removeLocked(connID)

	return domain.FinishResult{
		FinalScore:  participant.Score,
		MaxScore:    maxScore,
		Percentage:  percentage,
		Rank:        rank,
		Leaderboard: entries,
	}, record, len(s.participants) == 0, nil
}

// leave drops the participant on disconnect. No result is persisted; a
// participant who leaves before finishing loses their progress.
func (s *Session) leave(connID string) (removed, empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[connID]; !ok {
		return false, len(s.participants) == 0
	}
	s.removeLocked(connID)
	return true, len(s.participants) == 0
}

// removeLocked deletes the participant, broadcasts user-left, reassigns the
// host role to the earliest remaining joiner, and stops the timer when the
// room empties.
func (s *Session) removeLocked(connID string) {
	participant := s.participants[connID]
	delete(s.participants, connID)

	if s.hostConn == connID {
		s.hostConn = ""
		best := 0
		for id, p := range s.participants {
			if best == 0 || p.JoinOrder < best {
				best = p.JoinOrder
				s.hostConn = id
			}
		}
	}
	if len(s.participants) == 0 {
		s.stopTimerLocked()
	}

	if participant != nil {
		s.broadcastLocked(domain.Event{
			Type: domain.EventUserLeft,
			Payload: domain.UserLeftPayload{
				DisplayName:      participant.DisplayName,
				ParticipantCount: len(s.participants),
			},
		})
	}
}

// leaderboard rebuilds the standings from the live participant map.
func (s *Session) leaderboard() domain.Leaderboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Leaderboard{
		RoomID:    s.roomID,
		Entries:   buildLeaderboard(s.participants, s.quiz.MaxScore(), true),
		UpdatedAt: s.now(),
	}
}

func (s *Session) findQuestionLocked(questionID string) (domain.Question, bool) {
	for i := range s.quiz.Questions {
		if s.quiz.Questions[i].ID == questionID {
			return s.quiz.Questions[i], true
		}
	}
	return domain.Question{}, false
}

// questionViewLocked sanitizes the current question for broadcast: option
// texts only, correctness flags and fill-in answers stripped.
func (s *Session) questionViewLocked() (domain.QuestionView, time.Duration) {
	question := s.quiz.Questions[s.currentIndex]

	options := make([]string, 0, len(question.Options))
	for _, opt := range question.Options {
		options = append(options, opt.Text)
	}

	limit := question.TimeLimitSeconds
	if limit == 0 {
		limit = s.quiz.DefaultTimeLimitSeconds
	}

	points := question.Points
	if points == 0 {
		points = 1
	}

	return domain.QuestionView{
		ID:               question.ID,
		Text:             question.Text,
		Type:             question.Type,
		Options:          options,
		Points:           points,
		TimeLimitSeconds: limit,
		QuestionNumber:   s.currentIndex + 1,
		TotalQuestions:   len(s.quiz.Questions),
	}, time.Duration(limit) * time.Second
}

// subscribe registers a room event channel. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *Session) subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(event domain.Event) {
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest update so a slow client cannot block the room.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

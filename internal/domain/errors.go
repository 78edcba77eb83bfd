package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned when a room has no live session.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionInactive is returned for operations that need a started session.
	ErrSessionInactive = errors.New("quiz session not active")
	// ErrParticipantNotFound is returned when a connection acts before joining.
	ErrParticipantNotFound = errors.New("participant not found in session")
	// ErrQuestionNotFound indicates a submitted question ID is invalid.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAlreadyAnswered indicates a duplicate submission for one question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrNotHost is returned when host controls are on and a non-host
	// tries to drive the session.
	ErrNotHost = errors.New("only the host may control the session")
)

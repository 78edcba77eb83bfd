package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, log *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	TimeSpent      int    `json:"timeSpent"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the
// session use cases. Each connection gets its own participant identity.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("roomId")
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if roomID == "" || quizID == "" || userID == "" || displayName == "" {
		http.Error(w, "missing roomId, quizId, userId, or name", http.StatusBadRequest)
		return
	}
	connID := uuid.NewString()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	joined, err := h.service.Join(r.Context(), roomID, quizID, connID, userID, displayName)
	if err != nil {
		_ = conn.WriteJSON(domain.Event{Type: domain.EventError, Payload: errorPayload{Message: err.Error()}})
		return
	}

	// Subscribe after joining: the join broadcast goes to everyone already
	// in the room, never back to the joiner.
	updates, cancelUpdates, err := h.service.Subscribe(roomID)
	if err != nil {
		_ = conn.WriteJSON(domain.Event{Type: domain.EventError, Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancelUpdates()
	defer h.service.Disconnect(roomID, connID)

	send := make(chan domain.Event, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// One writer goroutine per connection; gorilla connections do not
	// allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.String("conn", connID), zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- update:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- domain.Event{Type: domain.EventQuizJoined, Payload: joined}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(r, roomID, connID, inbound, send)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, roomID, connID string, inbound inboundMessage, send chan<- domain.Event) {
	switch inbound.Type {
	case "start-quiz":
		if err := h.service.Start(roomID, connID); err != nil && !isStale(err) {
			send <- errorEvent(err)
		}

	case "submit-answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			send <- domain.Event{Type: domain.EventError, Payload: errorPayload{Message: "invalid answer payload"}}
			return
		}
		result, err := h.service.SubmitAnswer(r.Context(), roomID, connID, domain.AnswerSubmission{
			QuestionID:       payload.QuestionID,
			SelectedAnswer:   payload.SelectedAnswer,
			TimeSpentSeconds: payload.TimeSpent,
		})
		if err != nil {
			// Late and duplicate submissions are tolerated silently; the
			// service already logged them.
			if !isStale(err) {
				send <- errorEvent(err)
			}
			return
		}
		send <- domain.Event{Type: domain.EventAnswerResult, Payload: result}

	case "next-question":
		if err := h.service.Advance(roomID, connID); err != nil && !isStale(err) {
			send <- errorEvent(err)
		}

	case "finish-quiz":
		result, err := h.service.Finish(r.Context(), roomID, connID)
		if err != nil && isStale(err) {
			return
		}
		send <- domain.Event{Type: domain.EventQuizCompleted, Payload: result}
		if err != nil {
			// Persistence failed; the participant still sees their result.
			send <- errorEvent(err)
		}

	case "get-leaderboard":
		lb, err := h.service.Leaderboard(roomID)
		if err != nil {
			if !isStale(err) {
				send <- errorEvent(err)
			}
			return
		}
		send <- domain.Event{Type: domain.EventLeaderboard, Payload: lb}

	default:
		send <- domain.Event{Type: domain.EventError, Payload: errorPayload{Message: "unsupported message type"}}
	}
}

// isStale classifies the sentinel errors the protocol swallows:
// late, duplicate, or out-of-order client traffic.
func isStale(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound) ||
		errors.Is(err, domain.ErrSessionInactive) ||
		errors.Is(err, domain.ErrParticipantNotFound) ||
		errors.Is(err, domain.ErrQuestionNotFound) ||
		errors.Is(err, domain.ErrAlreadyAnswered)
}

func errorEvent(err error) domain.Event {
	return domain.Event{Type: domain.EventError, Payload: errorPayload{Message: err.Error()}}
}

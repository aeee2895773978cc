package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
	"github.com/ewilliams-labs/moodify/internal/core/services"
)

type startSessionRequest struct {
	UserID string `json:"user_id" validate:"omitempty,max=128"`
}

type startSessionResponse struct {
	Session         domain.ChatSession `json:"session"`
	DurationSeconds int                `json:"duration_seconds"`
}

type turnRequest struct {
	Session *domain.ChatSession `json:"session" validate:"required"`
	Message string              `json:"message" validate:"required,max=4000"`
}

type finishRequest struct {
	Session *domain.ChatSession `json:"session" validate:"required"`
}

type turnResponse struct {
	Session          domain.ChatSession      `json:"session"`
	Reply            string                  `json:"reply,omitempty"`
	RemainingSeconds int                     `json:"remaining_seconds"`
	Analysis         *recommendationResponse `json:"analysis,omitempty"`
}

// StartSession handles POST /sessions
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !h.decodeJSON(w, r, &req, true) {
		return
	}

	session := h.chat.NewSession(req.UserID)
	writeJSON(w, http.StatusCreated, startSessionResponse{
		Session:         session,
		DurationSeconds: int(h.chat.Duration().Seconds()),
	})
}

// SessionTurn handles POST /sessions/turn
func (h *Handler) SessionTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if !h.decodeJSON(w, r, &req, false) {
		return
	}
	if strings.TrimSpace(req.Session.ID) == "" {
		writeErrorWithCode(w, http.StatusBadRequest, "session.id is required", errCodeValidation)
		return
	}

	next, res, err := h.chat.ProcessTurn(r.Context(), *req.Session, req.Message)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTurnResponse(next, res))
}

// FinishSession handles POST /sessions/finish. It analyses the session
// without waiting for the chat timer.
func (h *Handler) FinishSession(w http.ResponseWriter, r *http.Request) {
	var req finishRequest
	if !h.decodeJSON(w, r, &req, false) {
		return
	}
	if strings.TrimSpace(req.Session.ID) == "" {
		writeErrorWithCode(w, http.StatusBadRequest, "session.id is required", errCodeValidation)
		return
	}

	next, res, err := h.chat.Finish(r.Context(), *req.Session)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTurnResponse(next, res))
}

func newTurnResponse(s domain.ChatSession, res services.TurnResult) turnResponse {
	resp := turnResponse{
		Session:          s,
		Reply:            res.Reply,
		RemainingSeconds: int(res.Remaining.Seconds()),
	}
	if res.Analysed {
		a := newRecommendationResponse(res.Mood, res.Tracks)
		resp.Analysis = &a
	}
	return resp
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionComplete):
		writeErrorWithCode(w, http.StatusConflict, "session is already complete", errCodeSessionComplete)
	case errors.Is(err, domain.ErrEmptyMessage):
		writeErrorWithCode(w, http.StatusBadRequest, "message is required", errCodeEmptyMessage)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

package rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
	"github.com/ewilliams-labs/moodify/internal/logging"
)

const maxHistoryLimit = 100

type historyResponse struct {
	UserID          string                   `json:"user_id"`
	Recommendations []recommendationResponse `json:"recommendations"`
}

type conversationsResponse struct {
	UserID        string                `json:"user_id"`
	Conversations []domain.Conversation `json:"conversations"`
}

// UserHistory handles GET /users/{userID}/history
func (h *Handler) UserHistory(w http.ResponseWriter, r *http.Request) {
	userID, limit, ok := h.historyParams(w, r)
	if !ok {
		return
	}

	recs, err := h.history.GetUserHistory(r.Context(), userID, limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("user", userID).Msg("failed to load history")
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	out := make([]recommendationResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, fromRecommendation(rec))
	}
	writeJSON(w, http.StatusOK, historyResponse{UserID: userID, Recommendations: out})
}

// UserConversations handles GET /users/{userID}/conversations
func (h *Handler) UserConversations(w http.ResponseWriter, r *http.Request) {
	userID, limit, ok := h.historyParams(w, r)
	if !ok {
		return
	}

	convs, err := h.history.GetConversationHistory(r.Context(), userID, limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("user", userID).Msg("failed to load conversations")
		writeError(w, http.StatusInternalServerError, "failed to load conversations")
		return
	}
	writeJSON(w, http.StatusOK, conversationsResponse{UserID: userID, Conversations: convs})
}

// historyParams extracts the user id and optional limit. A missing limit is
// passed as zero so the store applies its default.
func (h *Handler) historyParams(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	if h.history == nil {
		writeError(w, http.StatusNotImplemented, "history storage not configured")
		return "", 0, false
	}

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return "", 0, false
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeErrorWithCode(w, http.StatusBadRequest, "limit must be an integer between 1 and 100", errCodeValidation)
			return "", 0, false
		}
		limit = n
	}
	return userID, limit, true
}

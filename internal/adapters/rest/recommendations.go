package rest

import (
	"fmt"
	"net/http"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
	"github.com/ewilliams-labs/moodify/internal/core/services"
)

type recommendRequest struct {
	Mood  string `json:"mood" validate:"required,max=64"`
	Count int    `json:"count" validate:"omitempty,min=1"`
}

// Recommend handles POST /recommendations. It resolves tracks for a mood
// the caller already knows, without a chat.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if !h.decodeJSON(w, r, &req, false) {
		return
	}

	count := req.Count
	if count == 0 {
		count = services.DefaultRecommendationCount
	}
	if count > h.maxRecommendations {
		writeErrorWithCode(w, http.StatusBadRequest, fmt.Sprintf("count must be at most %d", h.maxRecommendations), errCodeValidation)
		return
	}

	mood := domain.ParseMood(req.Mood)
	tracks := h.recommender.Resolve(r.Context(), mood, count)
	writeJSON(w, http.StatusOK, newRecommendationResponse(mood, tracks))
}

package rest

import (
	"net/http"

	"github.com/ewilliams-labs/moodify/internal/core/domain"
)

// ListMoods handles GET /moods
func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	out := make([]moodResponse, 0, len(domain.Moods))
	for _, m := range domain.Moods {
		out = append(out, moodResponse{Name: m, Color: m.Color()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"moods": out})
}

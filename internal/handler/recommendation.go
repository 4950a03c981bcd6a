package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
)

// GET /users/{userID}/recommendations?n=
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid user id")
		return
	}

	count := domain.DefaultRecommendationCount
	if nStr := r.URL.Query().Get("n"); nStr != "" {
		count, err = strconv.Atoi(nStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid n parameter")
			return
		}
	}

	recs, err := h.service.GetRecommendations(r.Context(), userID, count)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

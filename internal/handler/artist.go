package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// GET /artists?search=&limit=&offset=
func (h *Handler) ListArtists(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, ok := intParam(q.Get("limit"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
		return
	}
	offset, ok := intParam(q.Get("offset"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid offset parameter")
		return
	}

	page, err := h.service.ListArtists(r.Context(), q.Get("search"), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GET /artists/{id}
func (h *Handler) GetArtist(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid artist id")
		return
	}

	artist, err := h.service.GetArtist(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

// intParam parses an optional query value; empty means 0.
func intParam(s string) (int, bool) {
	if s == "" {
		return 0, true
	}
	v, err := strconv.Atoi(s)
	return v, err == nil
}

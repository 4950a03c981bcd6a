package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
	"github.com/actuallystonmai/artist-recommender/internal/engine"
	"github.com/actuallystonmai/artist-recommender/internal/logging"
)

// writeServiceError maps service errors to responses. Internal error text
// is logged, never sent to the client.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *domain.InvalidInputError
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, "invalid_parameter", invalid.Error())
	case errors.Is(err, domain.ErrArtistNotFound):
		writeError(w, http.StatusNotFound, "artist_not_found", "Artist not found")
	case errors.Is(err, domain.ErrReferenceNotFound):
		writeError(w, http.StatusNotFound, "not_found", "User or artist does not exist")
	case errors.Is(err, domain.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "username_taken", "Username already exists")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
	case engine.IsEngineError(err):
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("recommendation request failed")
		code := "recommendation_failed"
		if errors.Is(err, engine.ErrEngineUnavailable) {
			code = "engine_unavailable"
		}
		writeError(w, http.StatusInternalServerError, code, "Could not generate recommendations")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("request timed out")
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "Request timed out, please try again")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

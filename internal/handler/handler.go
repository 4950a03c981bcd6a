package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
)

const maxBodyBytes = 1 << 20

// Service is the application surface the HTTP layer needs.
type Service interface {
	GetRecommendations(ctx context.Context, userID int64, count int) ([]domain.EnrichedRecommendation, error)
	ListArtists(ctx context.Context, search string, limit, offset int) (*domain.ArtistPage, error)
	GetArtist(ctx context.Context, id int64) (*domain.Artist, error)
	Register(ctx context.Context, name, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
	AddPreferences(ctx context.Context, userID int64, artistIDs []int64) error
}

type Handler struct {
	service  Service
	validate *validator.Validate
}

func NewHandler(svc Service) *Handler {
	return &Handler{
		service:  svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// decodeBody reads a JSON body into dst and runs struct validation on it.
// Returned errors are safe to show to the client.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return errors.New("request body is not valid JSON")
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("field %s failed %s validation", fe.Field(), fe.Tag())
		}
		return errors.New("request body failed validation")
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
)

// ListArtists returns one page of the catalogue ordered by popularity.
// A zero limit means the default page size.
func (s *Service) ListArtists(ctx context.Context, search string, limit, offset int) (*domain.ArtistPage, error) {
	if limit < 0 || limit > maxArtistLimit {
		return nil, domain.NewInvalidInput("limit", fmt.Sprintf("must be between 1 and %d", maxArtistLimit))
	}
	if offset < 0 {
		return nil, domain.NewInvalidInput("offset", "must not be negative")
	}
	if limit == 0 {
		limit = defaultArtistLimit
	}

	rows, err := s.artists.ListArtists(ctx, domain.ArtistQuery{
		Search: strings.TrimSpace(search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	return &domain.ArtistPage{Rows: rows}, nil
}

func (s *Service) GetArtist(ctx context.Context, id int64) (*domain.Artist, error) {
	if id <= 0 {
		return nil, domain.NewInvalidInput("id", "must be a positive integer")
	}
	return s.artists.GetArtistByID(ctx, id)
}

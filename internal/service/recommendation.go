package service

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
	"github.com/actuallystonmai/artist-recommender/internal/logging"
	"github.com/actuallystonmai/artist-recommender/internal/metrics"
)

// GetRecommendations validates input, runs the engine and joins every entry
// with its artist row. Entries whose artist is unknown keep a nil Artist.
func (s *Service) GetRecommendations(ctx context.Context, userID int64, count int) ([]domain.EnrichedRecommendation, error) {
	if userID <= 0 {
		return nil, domain.NewInvalidInput("userId", "must be a positive integer")
	}
	if count <= 0 {
		return nil, domain.NewInvalidInput("n", "must be a positive integer")
	}

	raw, err := s.engine.Recommend(ctx, userID, count)
	if err != nil {
		return nil, err
	}

	details, err := s.artistsByID(ctx, uniqueArtistIDs(raw))
	if err != nil {
		return nil, fmt.Errorf("enrich recommendations for user %d: %w", userID, err)
	}

	out := make([]domain.EnrichedRecommendation, len(raw))
	for i, r := range raw {
		out[i] = domain.EnrichedRecommendation{ArtistID: r.ArtistID, Score: r.Score}
		if a, ok := details[r.ArtistID]; ok {
			out[i].Artist = &a
		} else if r.ArtistID <= 0 {
			logging.Ctx(ctx).Warn().Int64("artist_id", r.ArtistID).Int64("user_id", userID).
				Msg("recommended entry has no usable artist id")
		} else {
			logging.Ctx(ctx).Warn().Int64("artist_id", r.ArtistID).Int64("user_id", userID).
				Msg("recommended artist not in catalogue")
		}
	}
	return out, nil
}

// artistsByID resolves ids through the cache, then one batched query for
// the rest. Cache failures only cost a trip to the database.
func (s *Service) artistsByID(ctx context.Context, ids []int64) (map[int64]domain.Artist, error) {
	found := make(map[int64]domain.Artist, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	missing := ids
	if s.cache != nil {
		cached, miss, err := s.cache.GetMany(ctx, ids)
		if err != nil {
			metrics.ArtistCacheLookups.WithLabelValues("error").Add(float64(len(ids)))
			logging.Ctx(ctx).Warn().Err(err).Msg("artist cache read failed")
			miss = ids
		} else {
			metrics.ArtistCacheLookups.WithLabelValues("hit").Add(float64(len(cached)))
			metrics.ArtistCacheLookups.WithLabelValues("miss").Add(float64(len(miss)))
		}
		for id, a := range cached {
			found[id] = a
		}
		missing = miss
	}
	if len(missing) == 0 {
		return found, nil
	}

	fetched, err := s.artists.GetArtistsByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	toCache := make([]domain.Artist, 0, len(fetched))
	for id, a := range fetched {
		found[id] = a
		toCache = append(toCache, a)
	}
	if s.cache != nil && len(toCache) > 0 {
		if err := s.cache.SetMany(ctx, toCache); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("artist cache write failed")
		}
	}
	return found, nil
}

// uniqueArtistIDs returns the distinct usable ids in first-seen order.
func uniqueArtistIDs(recs []domain.RawRecommendation) []int64 {
	seen := make(map[int64]struct{}, len(recs))
	ids := make([]int64, 0, len(recs))
	for _, r := range recs {
		if r.ArtistID <= 0 {
			continue
		}
		if _, ok := seen[r.ArtistID]; ok {
			continue
		}
		seen[r.ArtistID] = struct{}{}
		ids = append(ids, r.ArtistID)
	}
	return ids
}

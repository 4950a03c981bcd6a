package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
)

const defaultTTL = 10 * time.Minute

// ArtistCache keeps artist detail rows used to enrich recommendations.
type ArtistCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewArtistCache(client *redis.Client, ttl time.Duration) *ArtistCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ArtistCache{client: client, ttl: ttl}
}

func buildKey(artistID int64) string {
	return fmt.Sprintf("artist:%d", artistID)
}

// GetMany returns the cached artists among ids and the ids that missed.
func (c *ArtistCache) GetMany(ctx context.Context, ids []int64) (map[int64]domain.Artist, []int64, error) {
	if len(ids) == 0 {
		return map[int64]domain.Artist{}, nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = buildKey(id)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, ids, fmt.Errorf("failed to get artists from cache: %w", err)
	}

	found := make(map[int64]domain.Artist, len(ids))
	var missing []int64
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var a domain.Artist
		if err := json.Unmarshal([]byte(s), &a); err != nil {
			// treat a corrupt entry as a miss; the next SetMany overwrites it
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = a
	}
	return found, missing, nil
}

// SetMany stores artists in one pipeline round trip.
func (c *ArtistCache) SetMany(ctx context.Context, artists []domain.Artist) error {
	if len(artists) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, a := range artists {
		val, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to marshal artist %d: %w", a.ID, err)
		}
		pipe.Set(ctx, buildKey(a.ID), val, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set artists in cache: %w", err)
	}
	return nil
}

// Ping connectivity
func (c *ArtistCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

package service

import (
	"context"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
)

const (
	defaultArtistLimit = 50
	maxArtistLimit     = 100000
	bcryptCost         = 10
)

type ArtistStore interface {
	ListArtists(ctx context.Context, q domain.ArtistQuery) ([]domain.Artist, error)
	GetArtistByID(ctx context.Context, id int64) (*domain.Artist, error)
	GetArtistsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Artist, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u domain.NewUser) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	AddUserPreference(ctx context.Context, userID, artistID int64) error
}

// ArtistCache is an optional read-through cache in front of ArtistStore.
type ArtistCache interface {
	GetMany(ctx context.Context, ids []int64) (map[int64]domain.Artist, []int64, error)
	SetMany(ctx context.Context, artists []domain.Artist) error
}

// Recommender produces a ranked list of artists for a user.
type Recommender interface {
	Recommend(ctx context.Context, userID int64, count int) ([]domain.RawRecommendation, error)
}

// Retrainer schedules a model retraining without waiting for it.
type Retrainer interface {
	Trigger()
}

type Service struct {
	artists   ArtistStore
	users     UserStore
	cache     ArtistCache
	engine    Recommender
	retrainer Retrainer
}

// NewService wires the service. cache and retrainer may be nil.
func NewService(artists ArtistStore, users UserStore, cache ArtistCache, engine Recommender, retrainer Retrainer) *Service {
	return &Service{
		artists:   artists,
		users:     users,
		cache:     cache,
		engine:    engine,
		retrainer: retrainer,
	}
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
	"github.com/actuallystonmai/artist-recommender/internal/engine"
	"github.com/actuallystonmai/artist-recommender/internal/process"
)

func TestGetRecommendationsEnrichesInEngineOrder(t *testing.T) {
	artists := newFakeArtists(domain.Artist{ID: 1, Name: "Björk"})
	eng := &fakeEngine{recs: []domain.RawRecommendation{
		{ArtistID: 1, Score: 0.9},
		{ArtistID: 404, Score: 0.5},
	}}
	svc := NewService(artists, newFakeUsers(), nil, eng, nil)

	recs, err := svc.GetRecommendations(context.Background(), 7, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, int64(1), recs[0].ArtistID)
	require.NotNil(t, recs[0].Artist)
	assert.Equal(t, "Björk", recs[0].Artist.Name)

	assert.Equal(t, int64(404), recs[1].ArtistID)
	assert.Equal(t, 0.5, recs[1].Score)
	assert.Nil(t, recs[1].Artist)
}

func TestGetRecommendationsBatchesLookups(t *testing.T) {
	artists := newFakeArtists(domain.Artist{ID: 1}, domain.Artist{ID: 2}, domain.Artist{ID: 3})
	eng := &fakeEngine{recs: []domain.RawRecommendation{{ArtistID: 3}, {ArtistID: 1}, {ArtistID: 3}, {ArtistID: 2}}}
	svc := NewService(artists, newFakeUsers(), nil, eng, nil)

	recs, err := svc.GetRecommendations(context.Background(), 7, 4)
	require.NoError(t, err)

	require.Len(t, artists.batchCalls, 1)
	assert.Equal(t, []int64{3, 1, 2}, artists.batchCalls[0])
	assert.Equal(t, []int64{3, 1, 3, 2}, []int64{recs[0].ArtistID, recs[1].ArtistID, recs[2].ArtistID, recs[3].ArtistID})
	for _, r := range recs {
		assert.NotNil(t, r.Artist)
	}
}

func TestGetRecommendationsKeepsUnusableIDsWithoutDetails(t *testing.T) {
	artists := newFakeArtists(domain.Artist{ID: 7, Name: "Air"})
	eng := &fakeEngine{recs: []domain.RawRecommendation{{ArtistID: 0, Score: 0.8}, {ArtistID: 7, Score: 0.5}}}
	svc := NewService(artists, newFakeUsers(), nil, eng, nil)

	recs, err := svc.GetRecommendations(context.Background(), 7, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Nil(t, recs[0].Artist)
	assert.Equal(t, 0.8, recs[0].Score)
	require.NotNil(t, recs[1].Artist)
	assert.Equal(t, [][]int64{{7}}, artists.batchCalls)
}

func TestGetRecommendationsUsesCacheFirst(t *testing.T) {
	artists := newFakeArtists(domain.Artist{ID: 1, Name: "db"}, domain.Artist{ID: 2, Name: "db"})
	cache := &fakeCache{entries: map[int64]domain.Artist{1: {ID: 1, Name: "cached"}}}
	eng := &fakeEngine{recs: []domain.RawRecommendation{{ArtistID: 1}, {ArtistID: 2}}}
	svc := NewService(artists, newFakeUsers(), cache, eng, nil)

	recs, err := svc.GetRecommendations(context.Background(), 7, 2)
	require.NoError(t, err)

	assert.Equal(t, "cached", recs[0].Artist.Name)
	assert.Equal(t, "db", recs[1].Artist.Name)
	assert.Equal(t, [][]int64{{2}}, artists.batchCalls)
	assert.Equal(t, 1, cache.sets)
	assert.Contains(t, cache.entries, int64(2))
}

func TestGetRecommendationsSurvivesCacheOutage(t *testing.T) {
	artists := newFakeArtists(domain.Artist{ID: 1, Name: "db"})
	cache := &fakeCache{getErr: errors.New("redis down")}
	eng := &fakeEngine{recs: []domain.RawRecommendation{{ArtistID: 1}}}
	svc := NewService(artists, newFakeUsers(), cache, eng, nil)

	recs, err := svc.GetRecommendations(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "db", recs[0].Artist.Name)
}

func TestGetRecommendationsValidatesBeforeEngine(t *testing.T) {
	tests := []struct {
		name   string
		userID int64
		count  int
	}{
		{"zero count", 1, 0},
		{"negative count", 1, -3},
		{"zero user", 0, 10},
		{"negative user", -5, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{}
			svc := NewService(newFakeArtists(), newFakeUsers(), nil, eng, nil)

			_, err := svc.GetRecommendations(context.Background(), tt.userID, tt.count)
			require.Error(t, err)
			assert.True(t, domain.IsInvalidInput(err))
			assert.Zero(t, eng.calls)
		})
	}
}

func TestGetRecommendationsPropagatesEngineErrors(t *testing.T) {
	cause := &engine.EngineError{UserID: 7, Err: &process.ExecutionError{ExitCode: 2, Stderr: "boom"}}
	artists := newFakeArtists()
	svc := NewService(artists, newFakeUsers(), nil, &fakeEngine{err: cause}, nil)

	_, err := svc.GetRecommendations(context.Background(), 7, 10)
	require.Error(t, err)
	assert.Same(t, cause, err)

	var execErr *process.ExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, 2, execErr.ExitCode)
	assert.Equal(t, "boom", execErr.Stderr)
	assert.Empty(t, artists.batchCalls)
}

func TestGetRecommendationsStorageFailure(t *testing.T) {
	artists := newFakeArtists()
	artists.err = errDB
	svc := NewService(artists, newFakeUsers(), nil, &fakeEngine{recs: []domain.RawRecommendation{{ArtistID: 1}}}, nil)

	_, err := svc.GetRecommendations(context.Background(), 7, 10)
	assert.ErrorIs(t, err, errDB)
}

func TestGetRecommendationsEmptyResult(t *testing.T) {
	artists := newFakeArtists()
	svc := NewService(artists, newFakeUsers(), nil, &fakeEngine{recs: []domain.RawRecommendation{}}, nil)

	recs, err := svc.GetRecommendations(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.Empty(t, artists.batchCalls)
}

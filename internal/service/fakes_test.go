package service

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
)

type fakeArtists struct {
	byID       map[int64]domain.Artist
	batchCalls [][]int64
	lastQuery  domain.ArtistQuery
	err        error
}

func newFakeArtists(artists ...domain.Artist) *fakeArtists {
	f := &fakeArtists{byID: map[int64]domain.Artist{}}
	for _, a := range artists {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeArtists) ListArtists(_ context.Context, q domain.ArtistQuery) ([]domain.Artist, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	out := []domain.Artist{}
	for _, a := range f.byID {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeArtists) GetArtistByID(_ context.Context, id int64) (*domain.Artist, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrArtistNotFound
	}
	return &a, nil
}

func (f *fakeArtists) GetArtistsByIDs(_ context.Context, ids []int64) (map[int64]domain.Artist, error) {
	f.batchCalls = append(f.batchCalls, append([]int64(nil), ids...))
	if f.err != nil {
		return nil, f.err
	}
	out := map[int64]domain.Artist{}
	for _, id := range ids {
		if a, ok := f.byID[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

type prefKey struct{ user, artist int64 }

type fakeUsers struct {
	mu      sync.Mutex
	users   map[string]domain.User
	prefs   map[prefKey]bool
	artists map[int64]bool
	nextID  int64
	err     error
}

func newFakeUsers(knownArtists ...int64) *fakeUsers {
	f := &fakeUsers{users: map[string]domain.User{}, prefs: map[prefKey]bool{}, artists: map[int64]bool{}}
	for _, id := range knownArtists {
		f.artists[id] = true
	}
	return f
}

func (f *fakeUsers) addUser(name, username, password string) domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	f.nextID++
	u := domain.User{ID: f.nextID, Name: name, Username: username, PasswordHash: string(hash)}
	f.users[username] = u
	return u
}

func (f *fakeUsers) CreateUser(_ context.Context, u domain.NewUser) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.users[u.Username]; ok {
		return 0, domain.ErrUsernameTaken
	}
	f.nextID++
	f.users[u.Username] = domain.User{ID: f.nextID, Name: u.Name, Username: u.Username, PasswordHash: u.PasswordHash}
	return f.nextID, nil
}

func (f *fakeUsers) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUsers) AddUserPreference(_ context.Context, userID, artistID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if !f.artists[artistID] {
		return domain.ErrReferenceNotFound
	}
	k := prefKey{userID, artistID}
	if f.prefs[k] {
		return domain.ErrDuplicatePreference
	}
	f.prefs[k] = true
	return nil
}

type fakeEngine struct {
	recs  []domain.RawRecommendation
	err   error
	calls int
}

func (f *fakeEngine) Recommend(_ context.Context, _ int64, _ int) ([]domain.RawRecommendation, error) {
	f.calls++
	return f.recs, f.err
}

type fakeCache struct {
	entries map[int64]domain.Artist
	getErr  error
	sets    int
}

func (f *fakeCache) GetMany(_ context.Context, ids []int64) (map[int64]domain.Artist, []int64, error) {
	if f.getErr != nil {
		return nil, ids, f.getErr
	}
	found := map[int64]domain.Artist{}
	var missing []int64
	for _, id := range ids {
		if a, ok := f.entries[id]; ok {
			found[id] = a
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

func (f *fakeCache) SetMany(_ context.Context, artists []domain.Artist) error {
	f.sets++
	if f.entries == nil {
		f.entries = map[int64]domain.Artist{}
	}
	for _, a := range artists {
		f.entries[a.ID] = a
	}
	return nil
}

type countingRetrainer struct{ triggers int }

func (c *countingRetrainer) Trigger() { c.triggers++ }

var errDB = errors.New("connection refused")

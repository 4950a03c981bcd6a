package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
	"github.com/actuallystonmai/artist-recommender/internal/logging"
)

// Register creates a user and returns its id.
func (s *Service) Register(ctx context.Context, name, username, password string) (int64, error) {
	name, username = strings.TrimSpace(name), strings.TrimSpace(username)
	if name == "" || username == "" || password == "" {
		return 0, domain.NewInvalidInput("user", "name, username and password are required")
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return 0, domain.ErrUsernameTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return 0, fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return 0, domain.NewInvalidInput("password", "must be at most 72 bytes")
		}
		return 0, fmt.Errorf("hash password: %w", err)
	}

	return s.users.CreateUser(ctx, domain.NewUser{
		Name:         name,
		Username:     username,
		PasswordHash: string(hash),
	})
}

// Login checks credentials. Unknown users and wrong passwords both yield
// domain.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.NewInvalidInput("credentials", "username and password are required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// AddPreferences stores artist picks one by one. Already stored pairs are
// skipped. A missing user or artist stops the loop and earlier inserts stay.
// Any successful insert schedules a retraining.
func (s *Service) AddPreferences(ctx context.Context, userID int64, artistIDs []int64) error {
	if userID <= 0 {
		return domain.NewInvalidInput("user_id", "must be a positive integer")
	}
	if len(artistIDs) == 0 {
		return domain.NewInvalidInput("artistsId", "must contain at least one artist")
	}
	for _, id := range artistIDs {
		if id <= 0 {
			return domain.NewInvalidInput("artistsId", "must contain positive integers")
		}
	}

	inserted := 0
	defer func() {
		if inserted > 0 && s.retrainer != nil {
			s.retrainer.Trigger()
		}
	}()

	for _, artistID := range artistIDs {
		err := s.users.AddUserPreference(ctx, userID, artistID)
		switch {
		case err == nil:
			inserted++
		case errors.Is(err, domain.ErrDuplicatePreference):
			logging.Ctx(ctx).Debug().Int64("user_id", userID).Int64("artist_id", artistID).Msg("preference already stored")
		default:
			return err
		}
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
)

// AddUserPreference records one (user, artist) pair. Each call is its own
// statement; there is no surrounding transaction.
func (r *Repository) AddUserPreference(ctx context.Context, userID, artistID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_artists ("userID", "artistID", weight)
		VALUES ($1, $2, $3)`,
		userID, artistID, domain.PreferenceWeight,
	)
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicatePreference
	case isForeignKeyViolation(err):
		return fmt.Errorf("user %d artist %d: %w", userID, artistID, domain.ErrReferenceNotFound)
	default:
		return fmt.Errorf("insert preference user=%d artist=%d: %w", userID, artistID, err)
	}
}

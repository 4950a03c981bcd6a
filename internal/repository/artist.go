package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
)

const artistColumns = `a.id, a.name, a.url, a.picture_url, COALESCE(SUM(ua.weight), 0) AS popularity`

// ListArtists returns a page of artists, most listened first. Search is a
// case-insensitive substring match on the name.
func (r *Repository) ListArtists(ctx context.Context, q domain.ArtistQuery) ([]domain.Artist, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+artistColumns+`
		FROM artists a
		LEFT JOIN user_artists ua ON ua."artistID" = a.id
		WHERE $1 = '' OR a.name ILIKE '%' || $1 || '%'
		GROUP BY a.id
		ORDER BY popularity DESC, a.id
		LIMIT $2 OFFSET $3`,
		escapeLike(q.Search), q.Limit, q.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query artists search=%q: %w", q.Search, err)
	}
	defer rows.Close()

	artists, err := scanArtists(rows)
	if err != nil {
		return nil, err
	}
	return artists, nil
}

func (r *Repository) GetArtistByID(ctx context.Context, id int64) (*domain.Artist, error) {
	var a domain.Artist
	err := r.pool.QueryRow(ctx,
		`SELECT `+artistColumns+`
		FROM artists a
		LEFT JOIN user_artists ua ON ua."artistID" = a.id
		WHERE a.id = $1
		GROUP BY a.id`,
		id,
	).Scan(&a.ID, &a.Name, &a.URL, &a.PictureURL, &a.Popularity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrArtistNotFound
		}
		return nil, fmt.Errorf("query artist id=%d: %w", id, err)
	}
	return &a, nil
}

// GetArtistsByIDs loads all listed artists in one round trip. Unknown ids
// are simply absent from the result.
func (r *Repository) GetArtistsByIDs(ctx context.Context, ids []int64) (map[int64]domain.Artist, error) {
	found := make(map[int64]domain.Artist, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+artistColumns+`
		FROM artists a
		LEFT JOIN user_artists ua ON ua."artistID" = a.id
		WHERE a.id = ANY($1)
		GROUP BY a.id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query %d artists by id: %w", len(ids), err)
	}
	defer rows.Close()

	artists, err := scanArtists(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range artists {
		found[a.ID] = a
	}
	return found, nil
}

func scanArtists(rows pgx.Rows) ([]domain.Artist, error) {
	artists := []domain.Artist{}
	for rows.Next() {
		var a domain.Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.URL, &a.PictureURL, &a.Popularity); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	return artists, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(strings.TrimSpace(s))
}

package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/actuallystonmai/artist-recommender/internal/logging"
)

// DefaultPassword is the password every seeded user logs in with.
const DefaultPassword = "password"

var artistNames = []string{
	"Radiohead", "Daft Punk", "Björk", "Portishead", "Massive Attack",
	"Aphex Twin", "Boards of Canada", "Sigur Rós", "The Knife", "Air",
	"Beach House", "Arcade Fire", "LCD Soundsystem", "Caribou", "Four Tet",
	"Bonobo", "Burial", "Jamie xx", "The xx", "Tame Impala",
	"Fleetwood Mac", "Talking Heads", "Kraftwerk", "David Bowie", "Joy Division",
	"New Order", "The Cure", "Depeche Mode", "Pet Shop Boys", "Blondie",
}

var userNames = []string{
	"Alice", "Bruno", "Chloé", "Dmitri", "Eun-ji", "Farah", "Gabriel", "Hana",
	"Ines", "Jonas", "Kofi", "Lena", "Mateo", "Nadia", "Oscar", "Priya",
	"Quentin", "Rosa", "Sven", "Tomoko",
}

func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	logging.Info().Msg("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE user_artists, artists, users RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	logging.Info().Int("count", len(artistNames)).Msg("[seed] inserting artists")
	if err := seedArtists(ctx, pool); err != nil {
		return fmt.Errorf("seed artists: %w", err)
	}

	logging.Info().Int("count", len(userNames)).Msg("[seed] inserting users")
	if err := seedUsers(ctx, pool, rng); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	logging.Info().Msg("[seed] inserting user artists")
	if err := seedUserArtists(ctx, pool, rng, 200); err != nil {
		return fmt.Errorf("seed user artists: %w", err)
	}

	logging.Info().Msg("[seed] seeding complete")
	return nil
}

func seedArtists(ctx context.Context, pool *pgxpool.Pool) error {
	rows := []string{}
	args := []any{}

	for _, name := range artistNames {
		slug := strings.ReplaceAll(strings.ToLower(name), " ", "-")

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, name,
			"https://www.last.fm/music/"+slug,
			"https://img.example.com/artists/"+slug+".jpg",
		)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO artists (name, url, picture_url) VALUES " + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

func seedUsers(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand) error {
	// One hash shared by all seeded users keeps seeding fast.
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	rows := []string{}
	args := []any{}

	for _, name := range userNames {
		username := strings.ToLower(name)
		createdAt := time.Now().AddDate(0, 0, -rng.Intn(365))

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, name, username, string(hash), createdAt)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO users (name, username, password, created_at) VALUES " + strings.Join(rows, ", ")

	_, err = pool.Exec(ctx, query, args...)
	return err
}

func seedUserArtists(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, n int) error {
	rows, args := userArtistRows(rng, n, len(userNames), len(artistNames))
	if len(rows) == 0 {
		return nil
	}

	query := `INSERT INTO user_artists ("userID", "artistID", weight) VALUES ` +
		strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}

// userArtistRows draws up to n distinct (user, artist) pairs skewed toward
// low ids, so a few users and artists dominate the listening counts.
func userArtistRows(rng *rand.Rand, n, users, artists int) ([]string, []any) {
	seen := make(map[[2]int64]bool)

	rows := []string{}
	args := []any{}

	for range n {
		userID := int64(math.Ceil(math.Pow(rng.Float64(), 1.5) * float64(users)))
		userID = max(1, min(userID, int64(users)))

		artistID := int64(math.Ceil(math.Pow(rng.Float64(), 1.3) * float64(artists)))
		artistID = max(1, min(artistID, int64(artists)))

		key := [2]int64{userID, artistID}
		if seen[key] {
			continue
		}
		seen[key] = true

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, userID, artistID, listenWeight(rng))
	}

	return rows, args
}

// listenWeight returns a play count following a power law between 1 and 5000.
func listenWeight(rng *rand.Rand) int {
	u := rng.Float64()
	if u == 0 {
		u = 0.001
	}
	raw := math.Pow(u, 2.0)
	if raw < 0.0002 {
		raw = 0.0002
	}
	return int(math.Round(raw * 5000))
}

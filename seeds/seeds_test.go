package seeds

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserArtistRowsAreDistinctAndInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	rows, args := userArtistRows(rng, 200, 20, 30)

	require.NotEmpty(t, rows)
	require.Len(t, args, len(rows)*3)

	seen := map[[2]int64]bool{}
	for i := 0; i < len(args); i += 3 {
		userID := args[i].(int64)
		artistID := args[i+1].(int64)
		weight := args[i+2].(int)

		assert.True(t, userID >= 1 && userID <= 20, "user id %d", userID)
		assert.True(t, artistID >= 1 && artistID <= 30, "artist id %d", artistID)
		assert.True(t, weight >= 1 && weight <= 5000, "weight %d", weight)

		key := [2]int64{userID, artistID}
		assert.False(t, seen[key], "duplicate pair %v", key)
		seen[key] = true
	}
}

func TestRowPlaceholdersAreSequential(t *testing.T) {
	rows, _ := userArtistRows(rand.New(rand.NewSource(1)), 3, 20, 30)
	require.NotEmpty(t, rows)
	assert.Equal(t, "($1, $2, $3)", rows[0])
}

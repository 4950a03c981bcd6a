package migrations

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecer struct {
	statements []string
	err        error
}

func (r *recordingExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	r.statements = append(r.statements, sql)
	return pgconn.CommandTag{}, r.err
}

func TestUpCreatesSchema(t *testing.T) {
	db := &recordingExecer{}
	require.NoError(t, Up(context.Background(), db))

	require.Len(t, db.statements, 1)
	sql := db.statements[0]
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS artists")
	assert.Contains(t, sql, "username   TEXT NOT NULL UNIQUE")
	assert.Contains(t, sql, `PRIMARY KEY ("userID", "artistID")`)
}

func TestDownDropsInDependencyOrder(t *testing.T) {
	db := &recordingExecer{}
	require.NoError(t, Down(context.Background(), db))

	sql := db.statements[0]
	assert.Less(t, strings.Index(sql, "user_artists"), strings.Index(sql, "TABLE IF EXISTS users"))
}

func TestUpWrapsError(t *testing.T) {
	boom := errors.New("boom")
	err := Up(context.Background(), &recordingExecer{err: boom})
	assert.ErrorIs(t, err, boom)
}


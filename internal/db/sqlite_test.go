package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite_CreatesAndPings(t *testing.T) {
	conn, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.PingContext(context.Background()))
}

func TestRunMigrations_CreatesTables(t *testing.T) {
	conn := OpenTestSQLite(t)

	for _, table := range []string{"datasets", "vector_chunks"} {
		var name string
		err := conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	conn := OpenTestSQLite(t)
	require.NoError(t, RunMigrations(conn))
}

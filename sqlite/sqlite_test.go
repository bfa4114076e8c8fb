package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/socialarchive/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		require.NoError(t, db.Open(ctx))
		defer db.Close()

		var count int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM extractions").Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count)

		var version int
		require.NoError(t, db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
		assert.Equal(t, sqlite.SchemaVersion, version)
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		require.Error(t, db.Open(ctx))
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, db.Open(ctx))
		defer db.Close()

		var journalMode string
		err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		assert.Equal(t, "wal", journalMode)
	})

	t.Run("keeps cached rows across reopen", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "test.db")
		first := sqlite.NewDB(path)
		require.NoError(t, first.Open(ctx))
		_, err := first.ExecContext(ctx,
			`INSERT INTO extractions (hash, size, text, extracted_at) VALUES ('h', 1, 'x', 'now')`)
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second := sqlite.NewDB(path)
		require.NoError(t, second.Open(ctx))
		defer second.Close()

		var count int
		require.NoError(t, second.QueryRowContext(ctx, "SELECT COUNT(*) FROM extractions").Scan(&count))
		assert.Equal(t, 1, count)
	})

	t.Run("discards a cache written with another schema version", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "test.db")
		first := sqlite.NewDB(path)
		require.NoError(t, first.Open(ctx))
		_, err := first.ExecContext(ctx,
			`INSERT INTO extractions (hash, size, text, extracted_at) VALUES ('h', 1, 'x', 'now')`)
		require.NoError(t, err)
		_, err = first.ExecContext(ctx, "PRAGMA user_version = 0")
		require.NoError(t, err)
		require.NoError(t, first.Close())

		second := sqlite.NewDB(path)
		require.NoError(t, second.Open(ctx))
		defer second.Close()

		var count int
		require.NoError(t, second.QueryRowContext(ctx, "SELECT COUNT(*) FROM extractions").Scan(&count))
		assert.Zero(t, count)
		assert.Equal(t, path, second.Path())
	})
}

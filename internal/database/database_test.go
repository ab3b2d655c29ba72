package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens a migrated in-memory database closed at test end
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(NewMemoryOptions())
	require.NoError(t, err, "Failed to create test database")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.MigrateDatabase(), "Failed to run migrations")
	return db
}

func insertShop(ctx context.Context, tx *sql.Tx, id, alias string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO shops (id, name, alias) VALUES (?, ?, ?)`, id, alias, alias)
	return err
}

func TestDBClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_close.db")

	db, err := New(NewDefaultOptions(dbPath))
	assert.NoError(t, err)
	assert.NotNil(t, db)

	err = db.Close()
	assert.NoError(t, err)

	// Should error because connection is closed
	err = db.conn.Ping()
	assert.Error(t, err)
}

// TestPragmaSettings verifies that options correctly set the corresponding SQLite PRAGMAs.
func TestPragmaSettings(t *testing.T) {
	testCases := []struct {
		name            string
		opts            func(path string) SQLiteOptions
		expectedJournal string
		expectedBusy    int
		expectedCache   int
		expectedFK      int // 0 for false, 1 for true
		expectedSync    int // 0=OFF, 1=NORMAL, 2=FULL, 3=EXTRA
	}{
		{
			name:            "Default Options",
			opts:            NewDefaultOptions,
			expectedJournal: "wal",
			expectedBusy:    5000,
			expectedCache:   2000,
			expectedFK:      1,
			expectedSync:    1,
		},
		{
			name: "Custom Options",
			opts: func(path string) SQLiteOptions {
				return SQLiteOptions{
					Path:        path,
					Journal:     JournalDelete,
					BusyTimeout: 12345,
					CacheSize:   -4000, // 4000 pages
					ForeignKeys: false,
					Synchronous: SynchronousFull,
				}
			},
			expectedJournal: "delete",
			expectedBusy:    12345,
			expectedCache:   -4000,
			expectedFK:      0,
			expectedSync:    2,
		},
		{
			name: "Memory Journal",
			opts: func(path string) SQLiteOptions {
				return SQLiteOptions{
					Path:        path,
					Journal:     JournalMemory,
					BusyTimeout: 999,
					CacheSize:   8000,
					ForeignKeys: true,
					Synchronous: SynchronousOff,
				}
			},
			expectedJournal: "memory",
			expectedBusy:    999,
			expectedCache:   8000,
			expectedFK:      1,
			expectedSync:    0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "test_pragma_settings.db")

			db, err := New(tc.opts(dbPath))
			require.NoError(t, err, "Failed to create DB connection")
			defer db.Close()

			var journalMode string
			err = db.conn.QueryRow("PRAGMA journal_mode;").Scan(&journalMode)
			assert.NoError(t, err, "Failed to query journal_mode")
			assert.Equal(t, tc.expectedJournal, journalMode, "Unexpected journal_mode")

			var busyTimeout int
			err = db.conn.QueryRow("PRAGMA busy_timeout;").Scan(&busyTimeout)
			assert.NoError(t, err, "Failed to query busy_timeout")
			assert.Equal(t, tc.expectedBusy, busyTimeout, "Unexpected busy_timeout")

			// cache_size is per connection, so read it on the pinned one
			conn, err := db.conn.Conn(context.Background())
			require.NoError(t, err)
			defer conn.Close()
			var cacheSize int
			err = conn.QueryRowContext(context.Background(), "PRAGMA cache_size;").Scan(&cacheSize)
			assert.NoError(t, err, "Failed to query cache_size")
			assert.Equal(t, tc.expectedCache, cacheSize, "Unexpected cache_size")

			var foreignKeys int
			err = conn.QueryRowContext(context.Background(), "PRAGMA foreign_keys;").Scan(&foreignKeys)
			assert.NoError(t, err, "Failed to query foreign_keys")
			assert.Equal(t, tc.expectedFK, foreignKeys, "Unexpected foreign_keys setting")

			var synchronous int
			err = conn.QueryRowContext(context.Background(), "PRAGMA synchronous;").Scan(&synchronous)
			assert.NoError(t, err, "Failed to query synchronous")
			assert.Equal(t, tc.expectedSync, synchronous, "Unexpected synchronous setting")
		})
	}
}

func TestPragmasApplyToEveryPooledConnection(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "pooled.db")
	db, err := New(NewDefaultOptions(dbPath))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	first, err := db.conn.Conn(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := db.conn.Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	for i, conn := range []*sql.Conn{first, second} {
		var cacheSize, foreignKeys int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA cache_size;").Scan(&cacheSize))
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA foreign_keys;").Scan(&foreignKeys))
		assert.Equal(t, 2000, cacheSize, "connection %d", i)
		assert.Equal(t, 1, foreignKeys, "connection %d", i)
	}
}

func TestMigrateDatabase(t *testing.T) {
	db := setupTestDB(t)

	for _, table := range []string{"shops", "business_hours", "config_settings"} {
		var name string
		err := db.conn.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}

	// Running again is a no-op
	assert.NoError(t, db.MigrateDatabase())
}

func TestMemoryDatabaseSharesOneConnection(t *testing.T) {
	db := setupTestDB(t)
	assert.Equal(t, 1, db.conn.Stats().MaxOpenConnections)
}

// TestWithTransaction tests the transaction functionality
func TestWithTransaction(t *testing.T) {
	db := setupTestDB(t)

	countShops := func(t *testing.T) int {
		var count int
		require.NoError(t, db.conn.QueryRow("SELECT COUNT(*) FROM shops").Scan(&count))
		return count
	}

	t.Run("Successful Transaction", func(t *testing.T) {
		ctx := context.Background()

		err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
			return insertShop(ctx, tx, "committed", "committed")
		})
		assert.NoError(t, err)

		var count int
		err = db.conn.QueryRow("SELECT COUNT(*) FROM shops WHERE id = ?", "committed").Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Transaction Rollback on Error", func(t *testing.T) {
		ctx := context.Background()
		countBefore := countShops(t)

		testError := errors.New("test error")
		err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := insertShop(ctx, tx, "rolled-back", "rolled-back"); err != nil {
				return err
			}
			return testError
		})

		assert.Error(t, err)
		assert.Equal(t, testError, err)
		assert.Equal(t, countBefore, countShops(t))
	})

	t.Run("Transaction Rollback on Panic", func(t *testing.T) {
		ctx := context.Background()
		countBefore := countShops(t)

		assert.Panics(t, func() {
			_ = db.WithTransaction(ctx, func(tx *sql.Tx) error {
				if err := insertShop(ctx, tx, "panicked", "panicked"); err != nil {
					return err
				}
				panic("test panic")
			})
		})

		assert.Equal(t, countBefore, countShops(t))
	})

	t.Run("Multiple Operations in Transaction", func(t *testing.T) {
		ctx := context.Background()
		countBefore := countShops(t)

		err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, alias := range []string{"multi-a", "multi-b", "multi-c"} {
				if err := insertShop(ctx, tx, alias, alias); err != nil {
					return err
				}
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, countBefore+3, countShops(t))
	})

	t.Run("Context Cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Millisecond)
		defer cancel()
		<-ctx.Done()

		err := db.WithTransaction(ctx, func(tx *sql.Tx) error {
			return insertShop(ctx, tx, "cancelled", "cancelled")
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "context")
	})
}

//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/devcamper-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds connection checks and migrations.
const TestTimeout = 10 * time.Second

var migrateOnce sync.Once

// GetTestDatabaseURL returns the URL of the test database, or "".
func GetTestDatabaseURL() string {
	if url := os.Getenv("DEVCAMPER_TEST_DB_URL"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// Open connects to the test database and migrates it to the latest
// version once per test binary. The test is skipped when no database is
// configured; the connection is closed on cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	url := GetTestDatabaseURL()
	if url == "" {
		t.Skip("DEVCAMPER_TEST_DB_URL or DATABASE_URL not set; skipping database test")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping test database")

	var migrateErr error
	migrateOnce.Do(func() { migrateErr = Migrate(db) })
	require.NoError(t, migrateErr, "failed to migrate test database")

	return db
}

// Migrate applies every embedded migration to db.
func Migrate(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetTableName(postgres.MigrationTable)
	goose.SetBaseFS(postgres.Migrations())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Warn("failed to roll back test transaction", slog.String("error", err.Error()))
		}
	}()

	fn(t, tx)
}

package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/learnpath/internal/config"
	"github.com/phrazzld/learnpath/internal/platform/postgres"
	"github.com/phrazzld/learnpath/internal/redact"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 10 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// GetTestDB opens a connection to the test database and makes sure the schema
// is migrated. The caller must close the returned *sql.DB.
func GetTestDB() (*sql.DB, error) {
	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		return nil, errors.New("no test database URL configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(ctx, config.DatabaseConfig{
		URL:             dbURL,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		return nil, err
	}

	migrateOnce.Do(func() {
		migrateErr = postgres.Migrate(ctx, db, slog.Default())
	})
	if migrateErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate %s: %w", redact.DatabaseURL(dbURL), migrateErr)
	}

	return db, nil
}

// GetTestDBWithT returns a migrated connection to the test database, closed
// automatically when the test finishes. The test is skipped when no database
// is configured.
func GetTestDBWithT(t *testing.T) *sql.DB {
	t.Helper()

	if ShouldSkipDatabaseTest() {
		t.Skip("DATABASE_URL not set - skipping integration test")
	}

	db, err := GetTestDB()
	require.NoError(t, err, "Failed to connect to test database")

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database connection: %v", err)
		}
	})
	return db
}

// WithTx executes a test function within a transaction, automatically rolling back
// after the test completes. This ensures test isolation and prevents side effects.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "Failed to begin transaction")

	defer func() {
		err := tx.Rollback()
		// sql.ErrTxDone is expected if tx is already committed or rolled back
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// Savepoint runs fn inside a savepoint of tx and rolls back to it when fn
// returns an error, leaving tx usable for the rest of the test. PostgreSQL
// aborts the whole transaction after a failed statement, so tests that expect
// a constraint violation and then keep going must use this.
func Savepoint(t *testing.T, tx *sql.Tx, name string, fn func() error) error {
	t.Helper()

	ctx := context.Background()
	_, err := tx.ExecContext(ctx, "SAVEPOINT "+name)
	require.NoError(t, err, "Failed to create savepoint")

	if fnErr := fn(); fnErr != nil {
		_, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
		require.NoError(t, err, "Failed to roll back to savepoint")
		return fnErr
	}

	_, err = tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
	require.NoError(t, err, "Failed to release savepoint")
	return nil
}

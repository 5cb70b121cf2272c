package testdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/synaptic/study-engine/internal/redact"
)

// MigrateFunc brings the schema of db up to date.
type MigrateFunc func(ctx context.Context, db *sql.DB) error

// Timeout bounds container startup and the initial ping.
const Timeout = 60 * time.Second

// Open returns a migrated database that is closed when the test ends.
// Outside CI the test is skipped when no database can be reached.
func Open(t *testing.T, migrate MigrateFunc) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("database tests are skipped in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	dsn := DatabaseURL()
	if dsn == "" {
		dsn = startContainer(ctx, t)
	}

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		unavailable(t, "connect to "+redact.String(dsn), err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if migrate != nil {
		require.NoError(t, migrate(ctx, db.DB), "failed to apply migrations")
	}
	return db
}

func startContainer(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tcpg.Run(ctx, "postgres:16-alpine",
		tcpg.WithDatabase("study_test"),
		tcpg.WithUsername("test"),
		tcpg.WithPassword("test"),
		tcpg.BasicWaitStrategies(),
	)
	if err != nil {
		unavailable(t, "start postgres container", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func unavailable(t *testing.T, action string, err error) {
	t.Helper()
	if IsCI() {
		t.Fatalf("failed to %s: %v", action, err)
	}
	t.Skipf("database unavailable, failed to %s: %v", action, err)
}

// WithTx runs fn in a transaction that is always rolled back, so the test
// leaves no rows behind.
func WithTx(t *testing.T, db *sqlx.DB, fn func(t *testing.T, tx *sqlx.Tx)) {
	t.Helper()

	tx, err := db.Beginx()
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

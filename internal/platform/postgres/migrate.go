package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// gooseLogger adapts the goose logger interface to slog.
type gooseLogger struct {
	logger *slog.Logger
}

// Printf forwards goose progress messages at INFO.
func (l *gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at ERROR. It does not exit; the error is returned to the caller.
func (l *gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return runGoose(ctx, db, logger, func(ctx context.Context) error {
		return goose.UpContext(ctx, db, migrationsDir)
	})
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return runGoose(ctx, db, logger, func(ctx context.Context) error {
		return goose.DownContext(ctx, db, migrationsDir)
	})
}

// MigrationStatus logs the state of every migration.
func MigrationStatus(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return runGoose(ctx, db, logger, func(ctx context.Context) error {
		return goose.StatusContext(ctx, db, migrationsDir)
	})
}

// SchemaVersion returns the current goose schema version.
func SchemaVersion(ctx context.Context, db *sql.DB) (int64, error) {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}

func runGoose(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(&gooseLogger{logger: logger.With(slog.String("component", "migrations"))})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := fn(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

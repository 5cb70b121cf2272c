package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/synaptic/study-engine/internal/config"
	"github.com/synaptic/study-engine/internal/platform/postgres"
)

// Migration commands accepted by the -migrate flag.
const (
	migrateUp      = "up"
	migrateDown    = "down"
	migrateStatus  = "status"
	migrateVersion = "version"
)

func validMigrateCommand(cmd string) bool {
	switch cmd {
	case migrateUp, migrateDown, migrateStatus, migrateVersion:
		return true
	}
	return false
}

// handleMigrations runs one migration command against the configured
// database and returns.
func handleMigrations(ctx context.Context, cfg *config.Config, cmd string, logger *slog.Logger) error {
	if !validMigrateCommand(cmd) {
		return fmt.Errorf("unknown migration command %q", cmd)
	}

	db, err := postgres.Open(ctx, cfg.Database.URL, postgres.PoolConfig{
		MaxOpenConns: 1,
		PingTimeout:  cfg.Database.PingTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("Error closing database connection", slog.String("error", cerr.Error()))
		}
	}()

	logger.Info("Executing migrations", slog.String("command", cmd))

	switch cmd {
	case migrateUp:
		return postgres.Migrate(ctx, db.DB, logger)
	case migrateDown:
		return postgres.MigrateDown(ctx, db.DB, logger)
	case migrateStatus:
		return postgres.MigrationStatus(ctx, db.DB, logger)
	default:
		version, err := postgres.SchemaVersion(ctx, db.DB)
		if err != nil {
			return err
		}
		logger.Info("Current schema version", slog.Int64("version", version))
		return nil
	}
}

// Package main runs the study engine HTTP server and its background
// readiness refresh.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/synaptic/study-engine/internal/config"
	"github.com/synaptic/study-engine/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (optional)")
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version) and exit")
	flag.Parse()

	if err := run(*configPath, *migrateCmd); err != nil {
		fmt.Fprintf(os.Stderr, "study-engine: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, migrateCmd string) error {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("redis_enabled", cfg.Redis.URL != ""),
		slog.Bool("jobs_enabled", cfg.Jobs.Enabled))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if migrateCmd != "" {
		return handleMigrations(ctx, cfg, migrateCmd, log)
	}

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

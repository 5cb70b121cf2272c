// Package logger provides structured logging functionality for the application.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/synaptic/study-engine/internal/config"
	"github.com/synaptic/study-engine/internal/redact"
)

// redactErrors scrubs "error" attributes before they are written.
func redactErrors(_ []string, a slog.Attr) slog.Attr {
	if a.Key != "error" {
		return a
	}
	switch v := a.Value.Any().(type) {
	case error:
		return slog.String(a.Key, redact.Error(v))
	case string:
		return slog.String(a.Key, redact.String(v))
	}
	return a
}

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger with the
// appropriate log level, sets it as the default logger and returns it.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	return SetupWithWriter(cfg, os.Stdout)
}

// SetupWithWriter is Setup writing to out instead of stdout.
func SetupWithWriter(cfg config.ServerConfig, out io.Writer) (*slog.Logger, error) {
	level, ok := ParseLevel(cfg.LogLevel)
	if !ok {
		// Create a temporary logger to output the warning
		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactErrors,
	}

	logger := slog.New(slog.NewJSONHandler(out, opts)).
		With(slog.String("service", "study-engine"))

	// This allows using the slog package functions directly (slog.Info, slog.Error, etc.)
	slog.SetDefault(logger)

	return logger, nil
}

// ParseLevel converts a case-insensitive level name into a slog.Level.
// Unknown names map to info and report false.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

package app

import (
	"log/slog"
	"os"
	"strings"

	"github.com/verityhq/dealdesk-backend/internal/config"
)

// NewLogger builds the process-wide slog.Logger from LogConfig and installs
// it as the slog default. The "json" format is meant for production; any
// other value falls back to a text handler with source locations, which is
// easier to read during development. Everything goes to stderr.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// parseLevel maps a case-insensitive level name to its slog level. Unknown
// or empty values mean info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

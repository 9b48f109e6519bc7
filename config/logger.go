package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"eventreg/internal/lib/logger/slogpretty"
)

// NewLogger returns a slog.Logger for the configured environment and level.
// production logs JSON, local logs colored text, anything else plain text.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(os.Stdout, cfg.Environment, cfg.LogLevel)
}

func newLogger(out io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	switch env {
	case EnvProduction:
		return slog.New(slog.NewJSONHandler(out, opts))
	case EnvLocal:
		return slog.New(slogpretty.PrettyHandlerOptions{SlogOpts: opts}.NewPrettyHandler(out))
	default:
		return slog.New(slog.NewTextHandler(out, opts))
	}
}

// parseLevel maps debug, info, warn and error; anything else is info.
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

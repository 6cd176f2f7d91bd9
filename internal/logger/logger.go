// Package logger configures log/slog with JSON output and source locations
// for the guildtask server and CLI.
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// Setup installs a JSON slog logger writing to w as the process default and returns it.
// Every record carries the service name.
func Setup(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})
	logger := slog.New(handler).With(slog.String("service", "guildtask"))
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string log level to slog.Level, ignoring case.
// Valid values: "debug", "info", "warn", "error".
// Unrecognized values default to info level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

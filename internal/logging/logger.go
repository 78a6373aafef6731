package logging

import (
	"log/slog"
	"os"
)

// New creates a structured logger. Format "text" is meant for
// development; any other value gets JSON output for production.
func New(format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

package internal

import (
	"io"
	"log/slog"
)

// NewLogger builds the console's logger: readable text lines in
// development, JSON in production. level accepts slog's names (debug,
// info, warn, error); anything unrecognized falls back to info.
func NewLogger(w io.Writer, env, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if env == "development" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

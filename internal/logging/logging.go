// Package logging configures the process-wide slog logger. Logs always go
// to stderr so stdout stays clean for prediction output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default logger. When resultsOnStdout is true the
// handler emits JSON so log lines stay machine-separable from the NDJSON
// predictions on stdout; otherwise it emits text for reading in a terminal.
func Setup(resultsOnStdout bool, level slog.Level) {
	slog.SetDefault(slog.New(handler(os.Stderr, resultsOnStdout, level)))
}

func handler(w io.Writer, json bool, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel maps a level name to slog.Level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

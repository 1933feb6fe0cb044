// Package log builds the zerolog loggers handed to each component.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the root logger, writing JSON lines to w (stdout when nil).
// An empty level falls back to LOG_LEVEL; anything unparsable means info.
func New(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("service", "watchstore").
		Logger()
}

// Component tags l with the emitting component.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

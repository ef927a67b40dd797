package config

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger creates the process logger. Unrecognised levels fall back to
// info; Validate rejects them before this runs, so the fallback only matters
// for hand-built configs in tests.
func NewLogger(cfg LoggerConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

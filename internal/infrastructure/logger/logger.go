package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/janhq/git-automation-server/internal/config"
)

// New creates a zerolog.Logger configured for the git automation service.
func New(cfg *config.Config) zerolog.Logger {
	return NewWithWriter(os.Stdout, cfg.ServiceName, cfg.Environment, cfg.LogLevel)
}

// NewWithWriter builds the console logger on an arbitrary writer. The CLI
// uses it with stderr so command output stays clean.
func NewWithWriter(out io.Writer, service, environment, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	base := log.Output(output).
		With().
		Timestamp().
		Str("service", service).
		Str("environment", environment).
		Logger().
		Level(ParseLevel(level))
	return base
}

// ParseLevel falls back to info for empty or unknown levels.
func ParseLevel(raw string) zerolog.Level {
	if raw == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

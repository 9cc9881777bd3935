// Package loggers builds zerolog loggers and a hook that logs task execution.
//
// The core packages never log. Install ZerologHook on an executor to see node
// transitions, model calls, tool calls and errors:
//
//	logger := loggers.New(loggers.Config{Level: "debug", Pretty: true})
//	exec.RegisterHook(loggers.NewZerologHook(logger))
package loggers

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration.
type Config struct {
	Level  string    // debug, info, warn, error; unknown values mean info
	Pretty bool      // human-readable console output
	Writer io.Writer // defaults to os.Stderr
}

// New creates a logger. An empty or unparsable level falls back to info.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var writer io.Writer = os.Stderr
	if cfg.Writer != nil {
		writer = cfg.Writer
	}
	if cfg.Pretty {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()
}

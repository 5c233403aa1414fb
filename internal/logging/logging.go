// Package logging configures the process-wide zerolog logger. The decision
// core never writes to stdout itself; diagnostics from skill failures and
// executor results all pass through here.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Level   string // debug | info | warn | error
	Format  string // console | json
	File    string // optional append-only log file
	Console bool
}

// New builds a logger writing to the console and, if configured, a file.
// The returned closer releases the file handle; it is a no-op otherwise.
func New(cfg Config) (zerolog.Logger, func() error, error) {
	level := ParseLevel(cfg.Level)

	var writers []io.Writer
	if cfg.Console {
		if cfg.Format == "json" {
			writers = append(writers, os.Stderr)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: time.TimeOnly,
			})
		}
	}

	closer := func() error { return nil }
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f.Close
	}

	if len(writers) == 0 {
		return zerolog.Nop().Level(level), closer, nil
	}

	log := zerolog.New(io.MultiWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return log, closer, nil
}

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

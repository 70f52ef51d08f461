// Package logging wraps github.com/decred/slog with named
// per-subsystem loggers sharing one level.
package logging

import (
	"os"

	"github.com/decred/slog"
)

// Backend owns one slog.Backend writing to stderr and hands out
// named loggers from it, all sharing the same level.
type Backend struct {
	backend slog.Backend
	level   slog.Level
}

// NewBackend creates a Backend at the given level name (trace, debug,
// info, warn, error, critical, off). An unrecognized name falls back
// to info.
func NewBackend(levelName string) *Backend {
	level, ok := slog.LevelFromString(levelName)
	if !ok {
		level = slog.LevelInfo
	}
	return &Backend{
		backend: slog.NewBackend(os.Stderr),
		level:   level,
	}
}

// Logger returns a named logger (e.g. "BOARD", "HTTPAPI") at the
// backend's configured level.
func (b *Backend) Logger(subsystem string) slog.Logger {
	log := b.backend.Logger(subsystem)
	log.SetLevel(b.level)
	return log
}

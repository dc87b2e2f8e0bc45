package soa

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with container-specific helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler to stderr at Info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NoopLogger creates a Logger that discards all output. This is the
// default: the container stays silent unless a logger is opted in.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// LogGrow logs a capacity change.
func (l *Logger) LogGrow(record string, oldCap, newCap, length int) {
	l.Debug("block rehomed",
		"record", record,
		"old_capacity", oldCap,
		"new_capacity", newCap,
		"length", length,
	)
}

// LogSnapshot logs a snapshot write or read.
func (l *Logger) LogSnapshot(record string, bytes int64, err error) {
	if err != nil {
		l.Error("snapshot failed",
			"record", record,
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.Debug("snapshot completed",
			"record", record,
			"bytes", bytes,
		)
	}
}

package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Services receive it via their WithLogger
// options so tests can substitute a silent logger.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Package logging defines a minimal structured-logging interface used across
// the client. Implementations wrap slog (default) or zap.
package logging

import (
	"context"
	"io"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "extraction finished", "file", name, "tokens", n)
type Logger interface {
	// Debug logs verbose diagnostics such as individual HTTP exchanges.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

const (
	FormatSlog = "slog"
	FormatZap  = "zap"
)

// New builds the logger selected by format ("slog" or "zap") writing to w at
// the given level ("debug", "info", "warn", "error"). Unknown formats fall
// back to slog.
func New(format, level string, w io.Writer) Logger {
	if strings.EqualFold(format, FormatZap) {
		return NewZapLogger(w, level)
	}
	return newTextLogger(w, level)
}

// Nop returns a logger that discards everything. Useful as a default in
// constructors and tests.
func Nop() Logger {
	return newTextLogger(io.Discard, "error")
}

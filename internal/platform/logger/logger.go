// Package logger provides structured logging for the mission server.
// All state transitions decided by the engine should be traceable
// through this.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the small surface the engine subsystems use.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a console logger writing to stdout.
func NewLogger() *Logger {
	return NewLoggerTo(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

// NewLoggerTo creates a logger writing to the given sink. Used by tests
// to silence output.
func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	l.zl.Warn().Msg(msg)
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	l.zl.Error().Msg(msg)
}

// Event logs a specific engine event for session tracing.
func (l *Logger) Event(eventType string, sessionID string, details string) {
	l.zl.Info().
		Str("event", eventType).
		Str("session", sessionID).
		Msg(details)
}

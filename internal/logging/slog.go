// Package logging provides the slog attribute helpers shared by the client
// and the CLI so log lines use the same keys everywhere.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Common log attribute keys.
const (
	KeyMethod   = "method"
	KeyStatus   = "status"
	KeyError    = "error"
	KeyDuration = "duration"
	KeyURL      = "url"
	KeyBytes    = "bytes"
	KeyCode     = "code"
	KeyCommand  = "command"
)

// New returns a text logger writing to w. Debug enables debug-level output;
// without it only warnings and errors are written. A nil w discards
// everything.
func New(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		return Discard()
	}
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// WithCommand returns a logger with the command attribute set.
func WithCommand(logger *slog.Logger, command string) *slog.Logger {
	return logger.With(slog.String(KeyCommand, command))
}

// Method returns a slog attribute for the remote method name.
func Method(name string) slog.Attr {
	return slog.String(KeyMethod, name)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Duration returns a slog attribute for an elapsed time.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Err returns a slog attribute for an error. A nil error yields an empty
// group, which handlers omit.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizeToken masks a token for logging, keeping only its length.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

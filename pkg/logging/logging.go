// Package logging owns the process-wide slog logger. Records go to stderr:
// stdout belongs to the CLI and the MCP stdio transport.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

var (
	current  atomic.Pointer[slog.Logger]
	fromEnvs sync.Once
)

// Logger returns the process logger. Unless replaced with SetLogger, it is
// built once from RADSAFE_LOG_FORMAT (json or text) and RADSAFE_LOG_LEVEL
// (debug, info, warn or error).
func Logger() *slog.Logger {
	fromEnvs.Do(func() {
		if current.Load() == nil {
			current.Store(New(os.Stderr, os.Getenv("RADSAFE_LOG_FORMAT"), os.Getenv("RADSAFE_LOG_LEVEL")))
		}
	})
	return current.Load()
}

// SetLogger replaces the process logger and returns a func restoring the
// previous one. Nil is ignored.
func SetLogger(l *slog.Logger) (restore func()) {
	if l == nil {
		return func() {}
	}
	prev := Logger()
	current.Store(l)
	return func() { current.Store(prev) }
}

// WithComponent returns a child logger tagged with component.
func WithComponent(component string) *slog.Logger {
	return Logger().With("component", component)
}

// New builds a logger writing to w. Unknown formats fall back to JSON and
// unknown levels to info.
func New(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", "radsafe")
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Trim shortens free text such as questions for log fields.
func Trim(text string, limit int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

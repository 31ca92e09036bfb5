// Package ods is the debug output used across qrtoolkit.
// It writes through log/slog and is silent until SetLogger is called.
package ods

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger replaces the logger. Passing nil restores the silent default.
// It is safe to call while other goroutines are logging.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ODS writes a formatted debug message.
func ODS(format string, a ...any) {
	l := Logger()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug(fmt.Sprintf(format, a...))
}

// Error writes a formatted error message.
func Error(format string, a ...any) {
	Logger().Error(fmt.Sprintf(format, a...))
}

// Recover logs a value obtained from recover() together with the stack.
func Recover(v any) {
	Logger().Error("panic recovered", "value", fmt.Sprint(v), "stack", string(debug.Stack()))
}

// ParseLevel converts a level name to slog.Level.
// Unknown names fall back to info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

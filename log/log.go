// Package log wraps log/slog with the module-tagging convention used
// throughout the interpreter: every package takes a child logger naming
// itself so diagnostics can be filtered by component.
package log

import (
	"log/slog"
	"os"
)

// Logger wraps a slog.Logger, adding the Module helper.
type Logger struct {
	inner *slog.Logger
}

var defaultLogger = &Logger{inner: slog.New(slog.NewJSONHandler(os.Stderr, nil))}

// Default returns the package-level logger, writing JSON to stderr.
func Default() *Logger { return defaultLogger }

// SetDefault replaces the package-level logger, e.g. to raise verbosity
// from a CLI flag.
func SetDefault(l *Logger) { defaultLogger = l }

// New builds a Logger at the given minimum level.
func New(level slog.Level) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	return &Logger{inner: slog.New(slog.NewJSONHandler(os.Stderr, opts))}
}

// Module returns a child logger tagged with the given component name.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// With returns a child logger with the given structured attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }
func Info(msg string, args ...any)  { defaultLogger.Info(msg, args...) }
func Warn(msg string, args ...any)  { defaultLogger.Warn(msg, args...) }
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }

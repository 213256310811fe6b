// Package logger is a thin structured-logging facade over log/slog.
// Nothing is written until Initialize is called, so library packages may
// log freely and tests stay quiet.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

var ErrUnknownFormat = errors.New("unknown log format")

var (
	active  atomic.Pointer[slog.Logger]
	logFile atomic.Pointer[lumberjack.Logger]
)

var levelNames = map[string]slog.Level{
	"DEBUG":   slog.LevelDebug,
	"INFO":    slog.LevelInfo,
	"WARN":    slog.LevelWarn,
	"WARNING": slog.LevelWarn,
	"ERROR":   slog.LevelError,
}

// parseLogLevel maps a configured level name to slog, defaulting to INFO
func parseLogLevel(name string) slog.Level {
	if level, ok := levelNames[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return level
	}
	return slog.LevelInfo
}

func newHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.NewTextHandler(w, opts), nil
	case "json":
		return slog.NewJSONHandler(w, opts), nil
	}
	return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
}

// Initialize installs console and/or rotating file output per config. With
// both outputs disabled it still logs to the console so startup errors are
// not lost. A previously opened log file is closed.
func Initialize(config Config) error {
	config = config.Normalize()
	level := parseLogLevel(config.Level)

	var handlers []slog.Handler
	if config.ConsoleEnabled || !config.FileEnabled {
		h, err := newHandler(os.Stdout, config.ConsoleFormat, level)
		if err != nil {
			return fmt.Errorf("console output: %w", err)
		}
		handlers = append(handlers, h)
	}

	var file *lumberjack.Logger
	if config.FileEnabled {
		file = &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.FileMaxSizeMB,
			MaxBackups: config.FileMaxBackups,
			MaxAge:     config.FileMaxAgeDays,
		}
		h, err := newHandler(file, config.FileFormat, level)
		if err != nil {
			return fmt.Errorf("file output: %w", err)
		}
		handlers = append(handlers, h)
	}

	install(slog.New(fanOut(handlers)), file)
	return nil
}

// SetOutput routes all logging to w, replacing any configured outputs.
// An unknown format falls back to text.
func SetOutput(w io.Writer, format string, level string) {
	h, err := newHandler(w, format, parseLogLevel(level))
	if err != nil {
		h, _ = newHandler(w, "text", parseLogLevel(level))
	}
	install(slog.New(h), nil)
}

// Close flushes and closes the rotating log file, if one is open
func Close() error {
	if f := logFile.Swap(nil); f != nil {
		return f.Close()
	}
	return nil
}

// Disable drops all further log output
func Disable() {
	active.Store(nil)
	Close()
}

func install(l *slog.Logger, file *lumberjack.Logger) {
	active.Store(l)
	if old := logFile.Swap(file); old != nil && old != file {
		old.Close()
	}
}

func emit(level slog.Level, msg string, args []any) {
	if l := active.Load(); l != nil {
		l.Log(context.Background(), level, msg, args...)
	}
}

// Debug logs a debug message
func Debug(msg string, args ...any) { emit(slog.LevelDebug, msg, args) }

// Info logs an info message
func Info(msg string, args ...any) { emit(slog.LevelInfo, msg, args) }

// Warning logs a warning message
func Warning(msg string, args ...any) { emit(slog.LevelWarn, msg, args) }

// Error logs an error message
func Error(msg string, args ...any) { emit(slog.LevelError, msg, args) }

// tee hands each record to every handler whose level admits it
type tee []slog.Handler

func fanOut(handlers []slog.Handler) slog.Handler {
	if len(handlers) == 1 {
		return handlers[0]
	}
	return tee(handlers)
}

func (t tee) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(t, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (t tee) WithGroup(name string) slog.Handler {
	return t.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (t tee) each(fn func(slog.Handler) slog.Handler) tee {
	out := make(tee, len(t))
	for i, h := range t {
		out[i] = fn(h)
	}
	return out
}

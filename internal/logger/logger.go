// Package logger provides a thin wrapper around zerolog.Logger that adds
// convenience constructors and context-aware helpers used throughout
// cardbox.
//
// The Logger type embeds zerolog.Logger so all standard zerolog methods
// (Debug, Info, Warn, Error, Fatal, etc.) are available directly on *Logger.
// Application code should pass *Logger by pointer and obtain operation-scoped
// loggers via FromContext.
package logger

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a thin wrapper around zerolog.Logger.
// Embedding zerolog.Logger exposes the full zerolog API while allowing the
// application to add helper methods without modifying the upstream type.
type Logger struct {
	zerolog.Logger
}

// NewLogger constructs a *Logger writing JSON to os.Stdout for the given
// role label (e.g. "cardbox"). When debug is false the level is Info.
//
// Every entry carries:
//   - a "role" field for filtering,
//   - a "ts" timestamp,
//   - a "func" caller field recording the fully-qualified function name.
func NewLogger(role string, debug bool) *Logger {
	return newLogger(os.Stdout, role, debug)
}

// NewFileLogger constructs a *Logger writing JSON to the given log file.
//
// CLI commands print their results on stdout, so structured logs go to a
// file instead. The file is size-rotated (10 MiB, 3 backups) so a
// long-lived address book never accumulates an unbounded log. If path is
// empty the logger falls back to stderr.
func NewFileLogger(path, role string, debug bool) *Logger {
	if path == "" {
		return newLogger(os.Stderr, role, debug)
	}

	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MiB
		MaxBackups: 3,
	}
	return newLogger(out, role, debug)
}

func newLogger(out io.Writer, role string, debug bool) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name() // return function name
	}
	zerolog.CallerFieldName = "func"
	zerolog.TimestampFieldName = "ts"

	l := zerolog.New(out).Level(level).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()

	return &Logger{l}
}

// Nop returns a *Logger that discards all log output.
// It is intended for use in tests and other contexts where logging is
// undesirable or would produce noise.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// WithContext returns ctx with the receiver attached, so that downstream
// code can recover it via FromContext.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext extracts the zerolog.Logger stored in ctx by zerolog's log.Ctx
// helper and returns it as a *Logger.
//
// If no logger has been attached to ctx, zerolog returns its global logger,
// so this function never returns nil.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*log.Ctx(ctx)}
}

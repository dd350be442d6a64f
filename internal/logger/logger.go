package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
)

// Logger represents application logger.
type Logger struct {
	*slog.Logger
}

// New creates new Logger instance with the specified level.
// Output goes to stderr so command output on stdout stays clean.
func New(level int) *Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter creates new Logger writing to w.
func NewWithWriter(level int, w io.Writer) *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.Level(level)})),
	}
}

// Fatal is equivalent to Error followed by os.Exit(1).
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}

// GRPC adapts the logger to the go-grpc-middleware logging interface.
func (l *Logger) GRPC() logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		l.Logger.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}

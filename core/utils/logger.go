package utils

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog with the printf-style surface the rest of the code
// uses. A nil Logger discards everything, so tests can pass nil freely.
type Logger struct {
	slog *slog.Logger
}

func NewLogger() *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     levelFromEnv(),
	})
	return &Logger{slog: slog.New(handler)}
}

// levelFromEnv reads MOVURA_LOG_LEVEL (debug|info|warn|error), default info.
func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("MOVURA_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a child logger carrying a component attribute.
func (l *Logger) With(component string) *Logger {
	if l == nil || l.slog == nil {
		return l
	}
	return &Logger{slog: l.slog.With("component", component)}
}

func (l *Logger) log(level slog.Level, format string, v ...any) {
	if l == nil || l.slog == nil {
		return
	}
	l.slog.Log(context.Background(), level, fmt.Sprintf(format, v...))
}

func (l *Logger) Debugf(format string, v ...any) {
	l.log(slog.LevelDebug, format, v...)
}

func (l *Logger) Printf(format string, v ...any) {
	l.log(slog.LevelInfo, format, v...)
}

func (l *Logger) Errorf(format string, v ...any) {
	l.log(slog.LevelError, format, v...)
}

func (l *Logger) Fatalf(format string, v ...any) {
	l.log(slog.LevelError, "FATAL: "+format, v...)
	os.Exit(1)
}

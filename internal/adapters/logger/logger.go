// Package logger implements a logging adapter using log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.trai.ch/knit/internal/core/ports"
)

var _ ports.Logger = (*Logger)(nil)

// Logger implements ports.Logger using log/slog.
type Logger struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	jsonMode bool
	output   io.Writer
}

// New creates a new Logger writing pretty output to stderr.
func New() *Logger {
	l := &Logger{output: os.Stderr}
	l.rebuild()
	return l
}

// SetOutput updates the logger's output destination.
// If w is nil, os.Stderr is used as the default.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty logging.
// The output destination is preserved from SetOutput calls.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

// rebuild replaces the slog handler. Callers must hold mu.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if l.jsonMode {
		handler = slog.NewJSONHandler(l.output, opts)
	} else {
		handler = NewPrettyHandler(l.output, opts)
	}
	l.logger = slog.New(handler)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// LogSpan logs a finished trace span. Failed spans are logged as warnings.
func (l *Logger) LogSpan(name string, elapsed time.Duration, failure string, attrs ...slog.Attr) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	level := slog.LevelInfo
	all := make([]slog.Attr, 0, len(attrs)+2)
	all = append(all, slog.Duration("elapsed", elapsed))
	all = append(all, attrs...)
	if failure != "" {
		level = slog.LevelWarn
		all = append(all, slog.String("error", failure))
	}
	l.logger.LogAttrs(context.Background(), level, "trace "+name, all...)
}

// Error logs an error together with its chain of causes and their metadata.
func (l *Logger) Error(err error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if err == nil {
		return
	}

	entries := collectErrorEntries(err)

	if l.jsonMode {
		attrs := make([]any, 0, len(entries))
		for i, entry := range entries {
			if i == 0 {
				attrs = append(attrs, slog.String("error", entry.Message))
			} else {
				attrs = append(attrs, slog.String("cause", entry.Message))
			}
			for _, key := range entry.keys() {
				attrs = append(attrs, slog.Any(key, entry.Metadata[key]))
			}
		}
		l.logger.Error("operation failed", attrs...)
		return
	}

	l.logger.Error(formatErrorEntries(entries))
}

package tsvsubset

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with run-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithDataset adds a dataset field to the logger.
func (l *Logger) WithDataset(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", name),
	}
}

// LogSeed logs the seed key set load.
func (l *Logger) LogSeed(ctx context.Context, keys uint64, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "seed load failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "seed loaded",
			"keys", keys,
			"duration", d,
		)
	}
}

// LogScanStart logs the start of a dataset scan with the size of the key
// set it filters by.
func (l *Logger) LogScanStart(ctx context.Context, file string, keys, keyBytes uint64) {
	l.InfoContext(ctx, "scan started",
		"file", file,
		"keys", keys,
		"key_bytes", keyBytes,
	)
}

// LogScanProgress logs the running counters of a dataset scan.
func (l *Logger) LogScanProgress(ctx context.Context, scanned, matched, offset int64) {
	l.DebugContext(ctx, "scan progress",
		"scanned", scanned,
		"matched", matched,
		"offset", offset,
	)
}

// LogScanDone logs a finished dataset scan.
func (l *Logger) LogScanDone(ctx context.Context, r DatasetReport, err error) {
	if err != nil {
		l.ErrorContext(ctx, "scan failed",
			"file", r.File,
			"scanned", r.Scanned,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "scan completed",
			"file", r.File,
			"compression", r.Compression,
			"scanned", r.Scanned,
			"matched", r.Matched,
			"bytes", r.Bytes,
			"duration", r.Duration,
		)
	}
}

// LogCommit logs the sink commit.
func (l *Logger) LogCommit(ctx context.Context, rows int64, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"rows", rows,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "commit completed",
			"rows", rows,
			"duration", d,
		)
	}
}

package segdb

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with segdb-specific log helpers, so call sites
// log a consistent set of fields for a given operation instead of
// hand-rolling slog.Attr lists.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler. If handler is nil,
// uses a text handler to stderr at LevelInfo.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs at level.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs at
// level.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable
	}))}
}

// WithTable adds a table field to the logger, for a DB instantiated over
// several named tables sharing one store.
func (l *Logger) WithTable(namespace string) *Logger {
	return &Logger{Logger: l.Logger.With("table", namespace)}
}

// LogInsert logs a batch insert.
func (l *Logger) LogInsert(ctx context.Context, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed", "rows", rows, "error", err)
		return
	}
	l.DebugContext(ctx, "insert completed", "rows", rows)
}

// LogGet logs a positional Get.
func (l *Logger) LogGet(ctx context.Context, index int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "get failed", "index", index, "error", err)
		return
	}
	l.DebugContext(ctx, "get completed", "index", index)
}

// LogRange logs a positional Range.
func (l *Logger) LogRange(ctx context.Context, offset, limit, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "range failed", "offset", offset, "limit", limit, "error", err)
		return
	}
	l.DebugContext(ctx, "range completed", "offset", offset, "limit", limit, "results", resultsFound)
}

// LogFlush logs an atomic commit.
func (l *Logger) LogFlush(ctx context.Context, metaKey string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed", "metaKey", metaKey, "error", err)
		return
	}
	l.InfoContext(ctx, "flush completed", "metaKey", metaKey)
}

// LogRestore logs a SetMeta rehydration.
func (l *Logger) LogRestore(ctx context.Context, metaKey string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed", "metaKey", metaKey, "error", err)
		return
	}
	l.InfoContext(ctx, "restore completed", "metaKey", metaKey)
}

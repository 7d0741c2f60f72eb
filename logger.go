package sketchbin

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with sketchbin-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithColumn adds a column field to the logger.
func (l *Logger) WithColumn(col int) *Logger {
	return &Logger{
		Logger: l.Logger.With("column", col),
	}
}

// WithRank adds a worker rank field to the logger.
func (l *Logger) WithRank(rank int) *Logger {
	return &Logger{
		Logger: l.Logger.With("rank", rank),
	}
}

// LogPush logs a push operation.
func (l *Logger) LogPush(ctx context.Context, columns, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "push failed",
			"columns", columns,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "push completed",
			"columns", columns,
			"entries", entries,
		)
	}
}

// LogPrune logs a prune operation.
func (l *Logger) LogPrune(ctx context.Context, to, before, after int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "prune failed",
			"to", to,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "prune completed",
			"to", to,
			"entries_before", before,
			"entries_after", after,
		)
	}
}

// LogMerge logs a merge operation.
func (l *Logger) LogMerge(ctx context.Context, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "merge failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "merge completed",
			"entries", entries,
		)
	}
}

// LogUnique logs a dedupe operation.
func (l *Logger) LogUnique(ctx context.Context, before, after int) {
	l.DebugContext(ctx, "unique completed",
		"entries_before", before,
		"entries_after", after,
	)
}

// LogAllReduce logs a distributed merge round.
func (l *Logger) LogAllReduce(ctx context.Context, rank, worldSize, payloadBytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "allreduce failed",
			"rank", rank,
			"world_size", worldSize,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "allreduce completed",
			"rank", rank,
			"world_size", worldSize,
			"payload_bytes", payloadBytes,
		)
	}
}

// LogCuts logs cut materialization.
func (l *Logger) LogCuts(ctx context.Context, columns, totalBins int) {
	l.InfoContext(ctx, "cuts materialized",
		"columns", columns,
		"total_bins", totalBins,
	)
}

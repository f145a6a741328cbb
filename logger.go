package searchstate

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/searchstate/workspace"
)

// Logger wraps slog.Logger with pool-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithMaxCheck adds the node-visit budget to the logger.
func (l *Logger) WithMaxCheck(maxCheck int) *Logger {
	return &Logger{
		Logger: l.Logger.With("max_check", maxCheck),
	}
}

// WithNodeCount adds the index node count to the logger.
func (l *Logger) WithNodeCount(nodeCount int) *Logger {
	return &Logger{
		Logger: l.Logger.With("node_count", nodeCount),
	}
}

// LogAcquire logs a workspace acquisition.
func (l *Logger) LogAcquire(ctx context.Context, maxCheck int, wait time.Duration, created bool, err error) {
	if err != nil {
		l.WarnContext(ctx, "workspace acquire failed",
			"max_check", maxCheck,
			"wait", wait,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "workspace acquired",
		"max_check", maxCheck,
		"wait", wait,
		"created", created,
	)
}

// LogRelease logs the end of a query. Queries whose visited set overflowed
// are logged at info level since they point at an undersized set.
func (l *Logger) LogRelease(ctx context.Context, st workspace.Stats) {
	if st.Visited.Overflowed > 0 {
		l.InfoContext(ctx, "visited set overflowed",
			"overflowed", st.Visited.Overflowed,
			"first_seen", st.Visited.FirstSeen,
			"slots_per_block", st.Visited.SlotsPerBlock,
			"max_check", st.MaxCheck,
		)
		return
	}
	l.DebugContext(ctx, "workspace released",
		"checked_leaves", st.CheckedLeaves,
		"tree_checked_leaves", st.TreeCheckedLeaves,
		"no_better_propagation", st.NoBetterPropagation,
		"early_terminated", st.EarlyTerminated,
		"second_block", st.Visited.SecondBlockActive,
	)
}

// LogClose logs a pool shutdown.
func (l *Logger) LogClose(ctx context.Context, dropped int, leased int) {
	l.InfoContext(ctx, "workspace pool closed",
		"dropped", dropped,
		"leased", leased,
	)
}

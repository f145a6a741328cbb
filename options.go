package searchstate

import (
	"log/slog"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	maxInFlight      int64
	memoryLimit      int64
	admissionRate    float64
	admissionBurst   int
	prewarm          int
	audit            bool
}

// Option configures Pool constructor behavior.
type Option func(*options)

// WithMaxInFlight bounds the number of workspaces leased at once.
// Acquire blocks (honoring its context) while the bound is reached.
// n <= 0 means unbounded.
//
// Set this to the number of query workers when concurrency is bounded by
// a fixed worker count; the pool then never holds more than n workspaces.
func WithMaxInFlight(n int64) Option {
	return func(o *options) {
		o.maxInFlight = n
	}
}

// WithMemoryLimit caps the memory held by all workspaces of the pool.
// Acquire fails with ErrMemoryLimitExceeded when a new workspace would not fit.
// bytes <= 0 means only tracking.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithAdmissionRate throttles Acquire to perSecond queries with the given burst.
// perSecond <= 0 disables throttling; burst <= 0 defaults to max(1, perSecond).
func WithAdmissionRate(perSecond float64, burst int) Option {
	return func(o *options) {
		o.admissionRate = perSecond
		o.admissionBurst = burst
	}
}

// WithPrewarm allocates n workspaces in New so the first queries do not pay
// for initialization.
func WithPrewarm(n int) Option {
	return func(o *options) {
		o.prewarm = n
	}
}

// WithAudit enables exact visited-set auditing on every workspace.
// Audit mode allocates per query; use it to measure redundant expansions,
// not in production serving.
func WithAudit(enabled bool) Option {
	return func(o *options) {
		o.audit = enabled
	}
}

// WithMetricsCollector configures a metrics collector for pool operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &searchstate.BasicMetricsCollector{}
//	pool, _ := searchstate.New(8192, nodeCount, searchstate.WithMetricsCollector(metrics))
//	// ... serve queries ...
//	fmt.Printf("overflow rate: %.4f\n", metrics.OverflowRate())
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for pool operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := searchstate.NewJSONLogger(slog.LevelInfo)
//	pool, _ := searchstate.New(8192, nodeCount, searchstate.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

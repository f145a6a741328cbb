package searchstate

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/searchstate/workspace"
)

// MetricsCollector defines an interface for collecting pool and per-query metrics.
// Implement this interface to integrate with monitoring systems; see
// metrics/promcollector for a Prometheus implementation.
type MetricsCollector interface {
	// RecordAcquire is called after each Acquire.
	// wait is the time spent in admission and slot waits, created reports
	// whether a new workspace had to be allocated, err is nil if successful.
	RecordAcquire(wait time.Duration, created bool, err error)

	// RecordQuery is called on Release with the workspace counters of the
	// finished query.
	RecordQuery(st workspace.Stats)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAcquire(time.Duration, bool, error) {}
func (NoopMetricsCollector) RecordQuery(workspace.Stats)             {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AcquireCount      atomic.Int64
	AcquireErrors     atomic.Int64
	AcquireWaitNanos  atomic.Int64
	WorkspacesCreated atomic.Int64
	QueryCount        atomic.Int64
	CheckedLeaves     atomic.Int64
	TreeCheckedLeaves atomic.Int64
	EarlyTerminations atomic.Int64
	VisitedFirstSeen  atomic.Int64
	VisitedOverflows  atomic.Int64
	SecondBlockUses   atomic.Int64
}

// RecordAcquire implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAcquire(wait time.Duration, created bool, err error) {
	b.AcquireCount.Add(1)
	b.AcquireWaitNanos.Add(wait.Nanoseconds())
	if err != nil {
		b.AcquireErrors.Add(1)
		return
	}
	if created {
		b.WorkspacesCreated.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(st workspace.Stats) {
	b.QueryCount.Add(1)
	b.CheckedLeaves.Add(int64(st.CheckedLeaves))
	b.TreeCheckedLeaves.Add(int64(st.TreeCheckedLeaves))
	b.VisitedFirstSeen.Add(int64(st.Visited.FirstSeen))
	b.VisitedOverflows.Add(int64(st.Visited.Overflowed))
	if st.EarlyTerminated {
		b.EarlyTerminations.Add(1)
	}
	if st.Visited.SecondBlockActive {
		b.SecondBlockUses.Add(1)
	}
}

// OverflowRate returns the fraction of unseen visited checks that overflowed.
func (b *BasicMetricsCollector) OverflowRate() float64 {
	overflows := b.VisitedOverflows.Load()
	total := b.VisitedFirstSeen.Load() + overflows
	if total == 0 {
		return 0
	}
	return float64(overflows) / float64(total)
}

// AverageAcquireWait returns the mean acquire wait.
func (b *BasicMetricsCollector) AverageAcquireWait() time.Duration {
	n := b.AcquireCount.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(b.AcquireWaitNanos.Load() / n)
}

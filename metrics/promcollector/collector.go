// Package promcollector exports pool and per-query metrics to Prometheus.
package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/searchstate"
	"github.com/hupe1980/searchstate/workspace"
)

// DefaultNamespace prefixes every metric name unless overridden.
const DefaultNamespace = "searchstate"

var _ searchstate.MetricsCollector = (*Collector)(nil)

// Collector implements searchstate.MetricsCollector on Prometheus metrics.
type Collector struct {
	factory   promauto.Factory
	namespace string

	acquires          *prometheus.CounterVec
	acquireWait       prometheus.Histogram
	workspacesCreated prometheus.Counter

	queries           prometheus.Counter
	checkedLeaves     prometheus.Histogram
	treeCheckedLeaves prometheus.Counter
	earlyTerminations prometheus.Counter

	visitedFirstSeen  prometheus.Counter
	visitedOverflows  prometheus.Counter
	secondBlockUses   prometheus.Counter
	visitedOverflowed prometheus.Counter
}

// Option configures a Collector.
type Option func(*Collector)

// WithNamespace sets the metric name prefix.
func WithNamespace(ns string) Option {
	return func(c *Collector) {
		c.namespace = ns
	}
}

// New registers the collector's metrics with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, optFns ...Option) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		factory:   promauto.With(reg),
		namespace: DefaultNamespace,
	}
	for _, fn := range optFns {
		fn(c)
	}

	c.acquires = c.factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "acquires_total",
		Help:      "Workspace acquisitions by result.",
	}, []string{"result"})
	c.acquireWait = c.factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      "acquire_wait_seconds",
		Help:      "Time spent waiting for admission and an in-flight slot.",
		Buckets:   []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	c.workspacesCreated = c.factory.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "workspaces_created_total",
		Help:      "Workspaces allocated because no idle one was available.",
	})
	c.queries = c.factory.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "queries_total",
		Help:      "Queries whose workspace was released.",
	})
	c.checkedLeaves = c.factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      "checked_leaves",
		Help:      "Nodes checked during graph expansion per query.",
		Buckets:   prometheus.ExponentialBuckets(16, 2, 12),
	})
	c.treeCheckedLeaves = c.factory.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "tree_checked_leaves_total",
		Help:      "Leaves checked during tree descent.",
	})
	c.earlyTerminations = c.factory.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      "early_terminations_total",
		Help:      "Queries whose no-better-propagation streak reached its limit.",
	})
	c.visitedFirstSeen = c.factory.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Subsystem: "visited",
		Name:      "first_seen_total",
		Help:      "Node ids recorded in the visited set.",
	})
	c.visitedOverflows = c.factory.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Subsystem: "visited",
		Name:      "overflows_total",
		Help:      "Node ids the visited set could not record.",
	})
	c.visitedOverflowed = c.factory.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Subsystem: "visited",
		Name:      "overflowed_queries_total",
		Help:      "Queries with at least one visited set overflow.",
	})
	c.secondBlockUses = c.factory.NewCounter(prometheus.CounterOpts{
		Namespace: c.namespace,
		Subsystem: "visited",
		Name:      "second_block_queries_total",
		Help:      "Queries that activated the second visited block.",
	})
	return c
}

// RecordAcquire implements searchstate.MetricsCollector.
func (c *Collector) RecordAcquire(wait time.Duration, created bool, err error) {
	if err != nil {
		c.acquires.WithLabelValues("error").Inc()
		return
	}
	c.acquires.WithLabelValues("ok").Inc()
	c.acquireWait.Observe(wait.Seconds())
	if created {
		c.workspacesCreated.Inc()
	}
}

// RecordQuery implements searchstate.MetricsCollector.
func (c *Collector) RecordQuery(st workspace.Stats) {
	c.queries.Inc()
	c.checkedLeaves.Observe(float64(st.CheckedLeaves))
	c.treeCheckedLeaves.Add(float64(st.TreeCheckedLeaves))
	c.visitedFirstSeen.Add(float64(st.Visited.FirstSeen))
	if st.EarlyTerminated {
		c.earlyTerminations.Inc()
	}
	if st.Visited.Overflowed > 0 {
		c.visitedOverflows.Add(float64(st.Visited.Overflowed))
		c.visitedOverflowed.Inc()
	}
	if st.Visited.SecondBlockActive {
		c.secondBlockUses.Inc()
	}
}

// ObservePool exports occupancy gauges of p, sampled at scrape time.
func (c *Collector) ObservePool(p *searchstate.Pool) {
	gauge := func(name, help string, fn func(searchstate.PoolStats) float64) {
		c.factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: c.namespace,
			Subsystem: "pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return fn(p.Stats()) })
	}

	gauge("idle_workspaces", "Workspaces waiting in the pool.",
		func(st searchstate.PoolStats) float64 { return float64(st.Idle) })
	gauge("leased_workspaces", "Workspaces owned by in-flight queries.",
		func(st searchstate.PoolStats) float64 { return float64(st.Leased) })
	gauge("memory_bytes", "Memory reserved by all pooled workspaces.",
		func(st searchstate.PoolStats) float64 { return float64(st.MemoryBytes) })
}

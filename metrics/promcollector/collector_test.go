package promcollector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/searchstate"
	"github.com/hupe1980/searchstate/model"
	"github.com/hupe1980/searchstate/visited"
	"github.com/hupe1980/searchstate/workspace"
)

func TestCollector_RecordAcquire(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordAcquire(time.Millisecond, true, nil)
	c.RecordAcquire(2*time.Millisecond, false, nil)
	c.RecordAcquire(0, false, errors.New("closed"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.acquires.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.acquires.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.workspacesCreated))
	assert.Equal(t, 1, testutil.CollectAndCount(c.acquireWait))
}

func TestCollector_RecordQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, WithNamespace("ann"))

	c.RecordQuery(workspace.Stats{
		CheckedLeaves:     100,
		TreeCheckedLeaves: 12,
		EarlyTerminated:   true,
		Visited: visited.Stats{
			FirstSeen:         90,
			Overflowed:        3,
			SecondBlockActive: true,
		},
	})
	c.RecordQuery(workspace.Stats{CheckedLeaves: 50, Visited: visited.Stats{FirstSeen: 50}})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.queries))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.treeCheckedLeaves))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.earlyTerminations))
	assert.Equal(t, 140.0, testutil.ToFloat64(c.visitedFirstSeen))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.visitedOverflows))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.visitedOverflowed))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.secondBlockUses))

	expected := `
# HELP ann_queries_total Queries whose workspace was released.
# TYPE ann_queries_total counter
ann_queries_total 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ann_queries_total"))
}

func TestCollector_Pool(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	p, err := searchstate.New(64, 1000, searchstate.WithMetricsCollector(c))
	require.NoError(t, err)
	defer p.Close()
	c.ObservePool(p)

	ws, err := p.Acquire(context.Background(), 0)
	require.NoError(t, err)
	for id := model.NodeID(0); id < 20; id++ {
		ws.CheckAndSet(id)
	}
	ws.CheckedLeaves = 20

	expected := `
# HELP searchstate_pool_leased_workspaces Workspaces owned by in-flight queries.
# TYPE searchstate_pool_leased_workspaces gauge
searchstate_pool_leased_workspaces 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "searchstate_pool_leased_workspaces"))

	require.NoError(t, p.Release(ws))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queries))
	assert.Equal(t, 20.0, testutil.ToFloat64(c.visitedFirstSeen))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.workspacesCreated))

	n, err := testutil.GatherAndCount(reg,
		"searchstate_pool_idle_workspaces",
		"searchstate_pool_memory_bytes",
	)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
	assert.NotPanics(t, func() { New(reg, WithNamespace("other")) })
}

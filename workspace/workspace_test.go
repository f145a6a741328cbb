package workspace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbg "github.com/hupe1980/searchstate/internal/assert"
	"github.com/hupe1980/searchstate/model"
	"github.com/hupe1980/searchstate/queue"
	"github.com/hupe1980/searchstate/visited"
)

func TestWorkspace_Initialize(t *testing.T) {
	w := New()
	assert.False(t, w.Initialized())

	require.NoError(t, w.Initialize(640, 100000))
	assert.True(t, w.Initialized())

	assert.Equal(t, 6400, w.TreeQueue.Cap())
	assert.Equal(t, 19200, w.GraphQueue.Cap())
	assert.Equal(t, 10, w.ContinuousLimit)
	assert.Equal(t, 640, w.MaxCheck)
	assert.Zero(t, w.NoBetterPropagation)
	assert.Zero(t, w.TreeCheckedLeaves)
	assert.Zero(t, w.CheckedLeaves)
	assert.False(t, w.TreeQueue.IsMaxHeap())
	assert.False(t, w.GraphQueue.IsMaxHeap())

	st := w.Stats()
	assert.Equal(t, 262144, st.Visited.SlotsPerBlock)
	assert.False(t, st.EarlyTerminated)
}

func TestWorkspace_InitializeInvalid(t *testing.T) {
	tests := []struct {
		name      string
		maxCheck  int
		nodeCount int
		field     string
	}{
		{"negative maxCheck", -1, 10, "maxCheck"},
		{"negative nodeCount", 10, -1, "nodeCount"},
		{"nodeCount beyond NodeID", 10, math.MaxInt32 + 1, "nodeCount"},
		{"maxCheck overflows queue size", math.MaxInt / 20, 10, "maxCheck"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New()
			err := w.Initialize(tt.maxCheck, tt.nodeCount)
			var invalid *ErrInvalidArgument
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Name)
			assert.False(t, w.Initialized())
		})
	}
}

func TestWorkspace_SmallBudget(t *testing.T) {
	w := New()
	require.NoError(t, w.Initialize(63, 100))
	assert.Zero(t, w.ContinuousLimit, "limit truncates toward zero")
	assert.False(t, w.Stats().EarlyTerminated, "zero limit never reports termination")

	require.NoError(t, w.Initialize(0, 0))
	assert.Zero(t, w.TreeQueue.Cap())
	assert.ErrorIs(t, w.GraphQueue.Push(model.NewCell(1, 1)), queue.ErrFull)
}

func TestWorkspace_CheckAndSet(t *testing.T) {
	w := New()
	require.NoError(t, w.Initialize(128, 1000))

	for id := model.NodeID(0); id < 1000; id++ {
		require.Equal(t, visited.FirstSeen, w.CheckAndSet(id))
	}
	for id := model.NodeID(0); id < 1000; id++ {
		require.Equal(t, visited.AlreadySeen, w.CheckAndSet(id))
	}

	w.Reset(128)
	assert.Equal(t, visited.FirstSeen, w.CheckAndSet(7))
}

func TestWorkspace_Reset(t *testing.T) {
	w := New()
	require.NoError(t, w.Initialize(640, 5000))
	footprint := w.Footprint()

	// Dirty the state
	w.CheckAndSet(1)
	require.NoError(t, w.TreeQueue.Push(model.NewCell(1, 0.5)))
	require.NoError(t, w.GraphQueue.Push(model.NewCell(2, 0.6)))
	w.NoBetterPropagation = 4
	w.TreeCheckedLeaves = 10
	w.CheckedLeaves = 20

	w.Reset(1280)

	assert.Equal(t, visited.FirstSeen, w.CheckAndSet(1))
	assert.Equal(t, 0, w.TreeQueue.Len())
	assert.Equal(t, 0, w.GraphQueue.Len())
	assert.Zero(t, w.NoBetterPropagation)
	assert.Zero(t, w.TreeCheckedLeaves)
	assert.Zero(t, w.CheckedLeaves)
	assert.Equal(t, 1280, w.MaxCheck)
	assert.Equal(t, 20, w.ContinuousLimit)

	// Budget changes never reallocate
	assert.Equal(t, 6400, w.TreeQueue.Cap())
	assert.Equal(t, 19200, w.GraphQueue.Cap())
	assert.Equal(t, footprint, w.Footprint())

	w.Reset(-5)
	assert.Zero(t, w.MaxCheck)
	assert.Zero(t, w.ContinuousLimit)
}

func TestWorkspace_EmptyFrontier(t *testing.T) {
	w := New()
	require.NoError(t, w.Initialize(64, 17))
	require.NoError(t, w.GraphQueue.Push(model.NewCell(0, 0)))
	w.Reset(64)

	if dbg.Enabled {
		assert.Panics(t, func() { w.GraphQueue.Pop() })
		return
	}
	for _, q := range []*queue.Heap[model.Cell]{w.TreeQueue, w.GraphQueue} {
		c, ok := q.Pop()
		assert.False(t, ok)
		assert.True(t, c.IsEmpty())
		c, ok = q.Peek()
		assert.False(t, ok)
		assert.Equal(t, model.EmptyCell(), c)
	}
}

func TestWorkspace_Footprint(t *testing.T) {
	w := New()
	require.NoError(t, w.Initialize(64, 17))

	// visited: 2 blocks * 64 slots * 4 bytes; queues: (640+1920) cells * 8 bytes
	assert.Equal(t, int64(2*64*4+(640+1920)*8), w.Footprint())
}

func TestEstimateFootprint(t *testing.T) {
	for _, tc := range [][2]int{{64, 17}, {640, 100000}, {0, 0}, {8192, 1_000_000}} {
		est, err := EstimateFootprint(tc[0], tc[1])
		require.NoError(t, err)

		w := New()
		require.NoError(t, w.Initialize(tc[0], tc[1]))
		assert.Equal(t, w.Footprint(), est, "maxCheck=%d nodeCount=%d", tc[0], tc[1])
	}

	_, err := EstimateFootprint(-1, 10)
	var invalid *ErrInvalidArgument
	assert.ErrorAs(t, err, &invalid)
}

// TestWorkspace_EarlyTermination drives the counters the way a traversal does
// and checks the arithmetic independent of any real index.
func TestWorkspace_EarlyTermination(t *testing.T) {
	w := New()
	require.NoError(t, w.Initialize(640, 100000))
	require.Equal(t, 10, w.ContinuousLimit)

	// Best candidate first, then strictly worse ones.
	for i := 0; i < 50; i++ {
		require.NoError(t, w.GraphQueue.Push(model.NewCell(model.NodeID(i), float32(i))))
	}

	best := model.MaxDist
	pops := 0
	for !w.GraphQueue.Empty() {
		c, ok := w.GraphQueue.Pop()
		require.True(t, ok)
		pops++
		if w.CheckAndSet(c.Node) == visited.AlreadySeen {
			continue
		}
		w.CheckedLeaves++

		if c.Distance < best {
			best = c.Distance
			w.NoBetterPropagation = 0
		} else {
			w.NoBetterPropagation++
		}
		if w.NoBetterPropagation >= w.ContinuousLimit {
			break
		}
	}

	assert.Equal(t, 11, pops, "one improving pop then ten without improvement")
	assert.Equal(t, 10, w.NoBetterPropagation)
	assert.Equal(t, 11, w.CheckedLeaves)
	assert.Equal(t, float32(0), best)

	st := w.Stats()
	assert.True(t, st.EarlyTerminated)
	assert.Equal(t, 39, st.GraphQueueLen)
	assert.Equal(t, 11, st.Visited.FirstSeen)
}

func TestWorkspace_Audit(t *testing.T) {
	w := New()
	require.NoError(t, w.Initialize(64, 0)) // two slots per block

	_, ok := w.AuditReport()
	assert.False(t, ok)

	w.EnableAudit()
	for pass := 0; pass < 2; pass++ {
		for id := model.NodeID(0); id < 10; id++ {
			w.CheckAndSet(id)
		}
	}

	r, ok := w.AuditReport()
	require.True(t, ok)
	assert.Equal(t, 20, r.Checks)
	assert.Equal(t, 6, r.Redundant)
	assert.Zero(t, r.IncorrectPrunes)

	w.Reset(64)
	r, _ = w.AuditReport()
	assert.Zero(t, r.Checks)
	assert.Equal(t, visited.FirstSeen, w.CheckAndSet(0))

	w.DisableAudit()
	_, ok = w.AuditReport()
	assert.False(t, ok)
	assert.Equal(t, visited.AlreadySeen, w.CheckAndSet(0))
}

func BenchmarkWorkspace_ResetReuse(b *testing.B) {
	w := New()
	if err := w.Initialize(8192, 1_000_000); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Reset(8192)
		for id := model.NodeID(0); id < 512; id++ {
			if w.CheckAndSet(id*7919) != visited.AlreadySeen {
				_ = w.GraphQueue.Push(model.NewCell(id, float32(id)))
			}
		}
	}
}

package workspace

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/searchstate/internal/assert"
	"github.com/hupe1980/searchstate/internal/conv"
	"github.com/hupe1980/searchstate/model"
	"github.com/hupe1980/searchstate/queue"
	"github.com/hupe1980/searchstate/visited"
)

const (
	// TreeQueueFactor sizes the tree-phase queue as a multiple of maxCheck.
	TreeQueueFactor = 10
	// GraphQueueFactor sizes the graph-phase queue as a multiple of maxCheck.
	GraphQueueFactor = 30
	// ContinuousLimitDivisor derives the no-better-propagation limit from maxCheck.
	ContinuousLimitDivisor = 64
)

const cellSize = int64(unsafe.Sizeof(model.Cell{}))

// ErrInvalidArgument reports a size passed to Initialize that cannot be used.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidArgument struct {
	Name  string
	Value int
	cause error
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Name, e.Value)
}

func (e *ErrInvalidArgument) Unwrap() error { return e.cause }

// Workspace is the mutable state of a single query.
// It owns the visited set and both candidate frontiers so that a pooled
// instance serves query after query without allocating.
//
// Workspace is NOT thread-safe. Exactly one query owns it between Reset and
// its release back to the pool.
type Workspace struct {
	visited     visited.Set
	auditor     *visited.Auditor
	initialized bool

	// TreeQueue holds tree-phase candidates, nearest first.
	TreeQueue *queue.Heap[model.Cell]

	// GraphQueue holds graph-phase candidates, nearest first.
	GraphQueue *queue.Heap[model.Cell]

	// NoBetterPropagation is the number of consecutive expansions that did
	// not improve the best distance. The traversal increments and resets it.
	NoBetterPropagation int

	// ContinuousLimit is the streak length at which the traversal is
	// expected to stop early (MaxCheck / 64).
	ContinuousLimit int

	// TreeCheckedLeaves counts leaves checked during tree descent.
	TreeCheckedLeaves int

	// CheckedLeaves counts nodes checked during graph expansion.
	CheckedLeaves int

	// MaxCheck is the node-visit budget of the current query.
	MaxCheck int
}

// New returns an empty workspace. Call Initialize before the first query.
func New() *Workspace {
	return &Workspace{
		TreeQueue:  queue.NewMinWithEmpty(0, model.EmptyCell()),
		GraphQueue: queue.NewMinWithEmpty(0, model.EmptyCell()),
	}
}

// Initialize sizes the workspace for an index of nodeCount nodes and a
// visit budget of maxCheck. It allocates; call it once per pooled slot.
func (w *Workspace) Initialize(maxCheck, nodeCount int) error {
	treeCap, graphCap, err := queueSizes(maxCheck, nodeCount)
	if err != nil {
		return err
	}

	w.visited.Init(nodeCount)
	if w.auditor != nil {
		w.auditor.Clear()
	}
	w.TreeQueue.Resize(treeCap)
	w.GraphQueue.Resize(graphCap)
	w.resetCounters(maxCheck)
	w.initialized = true
	return nil
}

// Reset prepares the workspace for the next query without reallocating.
// maxCheck may differ from the value passed to Initialize; the queues keep
// their initialized capacity.
func (w *Workspace) Reset(maxCheck int) {
	assert.That(w.initialized, "reset of uninitialized workspace")
	if maxCheck < 0 {
		maxCheck = 0
	}

	if w.auditor != nil {
		w.auditor.Clear()
	} else {
		w.visited.Clear()
	}
	w.TreeQueue.Clear()
	w.GraphQueue.Clear()
	w.resetCounters(maxCheck)
}

func (w *Workspace) resetCounters(maxCheck int) {
	w.NoBetterPropagation = 0
	w.ContinuousLimit = maxCheck / ContinuousLimitDivisor
	w.TreeCheckedLeaves = 0
	w.CheckedLeaves = 0
	w.MaxCheck = maxCheck
}

// Initialized reports whether Initialize succeeded at least once.
func (w *Workspace) Initialized() bool { return w.initialized }

// CheckAndSet records nodeID as visited for this query. Expand the node
// unless the outcome is visited.AlreadySeen.
func (w *Workspace) CheckAndSet(nodeID model.NodeID) visited.Outcome {
	if w.auditor != nil {
		return w.auditor.CheckAndSet(nodeID)
	}
	return w.visited.CheckAndSet(nodeID)
}

// EnableAudit shadows the visited set with an exact bitmap until
// DisableAudit. Audit mode allocates and is meant for recall investigations.
func (w *Workspace) EnableAudit() {
	if w.auditor == nil {
		w.auditor = visited.NewAuditor(&w.visited)
	}
}

// DisableAudit drops the exact shadow bitmap.
func (w *Workspace) DisableAudit() { w.auditor = nil }

// AuditReport returns the audit counters of the current query.
// ok is false when audit mode is disabled.
func (w *Workspace) AuditReport() (report visited.AuditReport, ok bool) {
	if w.auditor == nil {
		return visited.AuditReport{}, false
	}
	return w.auditor.Report(), true
}

// EstimateFootprint returns the bytes a workspace will hold after
// Initialize(maxCheck, nodeCount), validating the arguments the same way.
func EstimateFootprint(maxCheck, nodeCount int) (int64, error) {
	treeCap, graphCap, err := queueSizes(maxCheck, nodeCount)
	if err != nil {
		return 0, err
	}
	return visited.SizeBytesFor(nodeCount) + int64(treeCap+graphCap)*cellSize, nil
}

func queueSizes(maxCheck, nodeCount int) (treeCap, graphCap int, err error) {
	if maxCheck < 0 {
		return 0, 0, &ErrInvalidArgument{Name: "maxCheck", Value: maxCheck}
	}
	if nodeCount < 0 {
		return 0, 0, &ErrInvalidArgument{Name: "nodeCount", Value: nodeCount}
	}
	if _, err := conv.IntToInt32(nodeCount); err != nil {
		return 0, 0, &ErrInvalidArgument{Name: "nodeCount", Value: nodeCount, cause: err}
	}
	treeCap, err = conv.MulInt(maxCheck, TreeQueueFactor)
	if err != nil {
		return 0, 0, &ErrInvalidArgument{Name: "maxCheck", Value: maxCheck, cause: err}
	}
	graphCap, err = conv.MulInt(maxCheck, GraphQueueFactor)
	if err != nil {
		return 0, 0, &ErrInvalidArgument{Name: "maxCheck", Value: maxCheck, cause: err}
	}
	return treeCap, graphCap, nil
}

// Footprint returns the bytes held by the visited set and both queues.
func (w *Workspace) Footprint() int64 {
	return w.visited.SizeBytes() +
		int64(w.TreeQueue.Allocated()+w.GraphQueue.Allocated())*cellSize
}

// Stats is a snapshot of a workspace after (or during) a query.
type Stats struct {
	MaxCheck            int
	ContinuousLimit     int
	NoBetterPropagation int
	TreeCheckedLeaves   int
	CheckedLeaves       int
	TreeQueueLen        int
	GraphQueueLen       int
	Visited             visited.Stats

	// EarlyTerminated reports whether the streak reached its limit.
	// The traversal decides whether it actually stopped.
	EarlyTerminated bool
}

// Stats returns a snapshot of the counters.
func (w *Workspace) Stats() Stats {
	return Stats{
		MaxCheck:            w.MaxCheck,
		ContinuousLimit:     w.ContinuousLimit,
		NoBetterPropagation: w.NoBetterPropagation,
		TreeCheckedLeaves:   w.TreeCheckedLeaves,
		CheckedLeaves:       w.CheckedLeaves,
		TreeQueueLen:        w.TreeQueue.Len(),
		GraphQueueLen:       w.GraphQueue.Len(),
		Visited:             w.visited.Stats(),
		EarlyTerminated:     w.ContinuousLimit > 0 && w.NoBetterPropagation >= w.ContinuousLimit,
	}
}

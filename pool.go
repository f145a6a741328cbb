package searchstate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/cpu"

	"github.com/hupe1980/searchstate/internal/resource"
	"github.com/hupe1980/searchstate/workspace"
)

// DefaultMaxCheck is the node-visit budget used when none is configured.
const DefaultMaxCheck = 8192

// slot is a pooled workspace together with its memory reservation.
type slot struct {
	ws    *workspace.Workspace
	bytes int64
}

// Pool hands out workspaces to in-flight queries.
//
// Acquire returns a workspace owned exclusively by the caller until Release.
// Workspaces are initialized once (sized for the pool's node count and
// default budget) and Reset for every later query, so the steady state does
// not allocate. All synchronization lives here; workspaces themselves are
// not thread-safe.
type Pool struct {
	maxCheck  int
	nodeCount int
	opts      options
	rc        *resource.Controller

	mu     sync.Mutex
	free   []slot
	leased map[*workspace.Workspace]int64
	closed bool

	_        cpu.CacheLinePad
	created  atomic.Int64
	acquired atomic.Int64
}

// New creates a pool for an index of nodeCount nodes. maxCheck is the default
// visit budget and sizes every workspace's candidate queues.
func New(maxCheck, nodeCount int, optFns ...Option) (*Pool, error) {
	if maxCheck <= 0 {
		return nil, &ErrInvalidArgument{Name: "maxCheck", Value: maxCheck}
	}
	if _, err := workspace.EstimateFootprint(maxCheck, nodeCount); err != nil {
		return nil, translateError(err)
	}

	o := applyOptions(optFns)
	p := &Pool{
		maxCheck:  maxCheck,
		nodeCount: nodeCount,
		opts:      o,
		rc: resource.NewController(resource.Config{
			MemoryLimitBytes: o.memoryLimit,
			MaxInFlight:      o.maxInFlight,
			AdmissionRate:    o.admissionRate,
			AdmissionBurst:   o.admissionBurst,
		}),
		leased: make(map[*workspace.Workspace]int64),
	}

	for i := 0; i < o.prewarm; i++ {
		s, err := p.newSlot()
		if err != nil {
			p.drop(p.free)
			return nil, err
		}
		p.free = append(p.free, s)
	}

	o.logger.WithMaxCheck(maxCheck).WithNodeCount(nodeCount).Debug("workspace pool created",
		"prewarmed", len(p.free),
		"memory_bytes", p.rc.MemoryUsage(),
	)
	return p, nil
}

// Acquire leases a workspace reset for a query with the given visit budget.
// maxCheck <= 0 uses the pool default. Acquire waits for admission and for a
// free in-flight slot, honoring ctx.
func (p *Pool) Acquire(ctx context.Context, maxCheck int) (*workspace.Workspace, error) {
	if maxCheck <= 0 {
		maxCheck = p.maxCheck
	}

	start := time.Now()
	ws, created, err := p.acquire(ctx, maxCheck, true)
	wait := time.Since(start)

	p.opts.metricsCollector.RecordAcquire(wait, created, err)
	p.opts.logger.LogAcquire(ctx, maxCheck, wait, created, err)
	return ws, err
}

// TryAcquire is like Acquire but never waits. It returns ErrPoolBusy when the
// admission limiter or the in-flight bound would make Acquire block.
func (p *Pool) TryAcquire(maxCheck int) (*workspace.Workspace, error) {
	if maxCheck <= 0 {
		maxCheck = p.maxCheck
	}

	ws, created, err := p.acquire(context.Background(), maxCheck, false)
	p.opts.metricsCollector.RecordAcquire(0, created, err)
	p.opts.logger.LogAcquire(context.Background(), maxCheck, 0, created, err)
	return ws, err
}

func (p *Pool) acquire(ctx context.Context, maxCheck int, wait bool) (*workspace.Workspace, bool, error) {
	if p.isClosed() {
		return nil, false, ErrPoolClosed
	}
	if wait {
		if err := p.rc.Admit(ctx); err != nil {
			return nil, false, err
		}
		if err := p.rc.AcquireSlot(ctx); err != nil {
			return nil, false, err
		}
	} else {
		// Slot first: a rejected call must not spend an admission token.
		if !p.rc.TryAcquireSlot() {
			return nil, false, ErrPoolBusy
		}
		if !p.rc.TryAdmit() {
			p.rc.ReleaseSlot()
			return nil, false, ErrPoolBusy
		}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.rc.ReleaseSlot()
		return nil, false, ErrPoolClosed
	}
	if n := len(p.free); n > 0 {
		s := p.free[n-1]
		p.free[n-1] = slot{}
		p.free = p.free[:n-1]
		p.leased[s.ws] = s.bytes
		p.mu.Unlock()

		s.ws.Reset(maxCheck)
		p.acquired.Add(1)
		return s.ws, false, nil
	}
	p.mu.Unlock()

	s, err := p.newSlot()
	if err != nil {
		p.rc.ReleaseSlot()
		return nil, false, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.rc.ReleaseMemory(s.bytes)
		p.rc.ReleaseSlot()
		return nil, false, ErrPoolClosed
	}
	p.leased[s.ws] = s.bytes
	p.mu.Unlock()

	s.ws.Reset(maxCheck)
	p.acquired.Add(1)
	return s.ws, true, nil
}

// newSlot reserves memory for and initializes a new workspace.
func (p *Pool) newSlot() (slot, error) {
	bytes, err := workspace.EstimateFootprint(p.maxCheck, p.nodeCount)
	if err != nil {
		return slot{}, translateError(err)
	}
	if err := p.rc.AcquireMemory(bytes); err != nil {
		return slot{}, translateError(err)
	}

	ws := workspace.New()
	if p.opts.audit {
		ws.EnableAudit()
	}
	if err := ws.Initialize(p.maxCheck, p.nodeCount); err != nil {
		p.rc.ReleaseMemory(bytes)
		return slot{}, translateError(err)
	}

	p.created.Add(1)
	return slot{ws: ws, bytes: bytes}, nil
}

// Release returns a leased workspace to the pool. The caller must not touch
// ws afterwards. Releasing a workspace twice, or one from another pool,
// returns ErrNotLeased.
func (p *Pool) Release(ws *workspace.Workspace) error {
	if ws == nil {
		return ErrNotLeased
	}

	p.mu.Lock()
	bytes, ok := p.leased[ws]
	if !ok {
		p.mu.Unlock()
		return ErrNotLeased
	}
	delete(p.leased, ws)
	st := ws.Stats()
	closed := p.closed
	if !closed {
		p.free = append(p.free, slot{ws: ws, bytes: bytes})
	}
	p.mu.Unlock()

	if closed {
		p.rc.ReleaseMemory(bytes)
	}
	p.rc.ReleaseSlot()

	p.opts.metricsCollector.RecordQuery(st)
	p.opts.logger.LogRelease(context.Background(), st)
	return nil
}

// Close drops all idle workspaces and rejects further Acquire calls.
// Workspaces still leased are dropped when they are released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.free
	p.free = nil
	leased := len(p.leased)
	p.mu.Unlock()

	p.drop(idle)
	p.opts.logger.LogClose(context.Background(), len(idle), leased)
	return nil
}

func (p *Pool) drop(slots []slot) {
	for _, s := range slots {
		p.rc.ReleaseMemory(s.bytes)
	}
}

func (p *Pool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// MaxCheck returns the pool's default visit budget.
func (p *Pool) MaxCheck() int { return p.maxCheck }

// NodeCount returns the node count workspaces are sized for.
func (p *Pool) NodeCount() int { return p.nodeCount }

// PoolStats is a snapshot of pool occupancy.
type PoolStats struct {
	Idle        int
	Leased      int
	Created     int64
	Acquired    int64
	InFlight    int64
	MemoryBytes int64
	Closed      bool
}

// Stats returns a snapshot of pool occupancy.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	idle, leased, closed := len(p.free), len(p.leased), p.closed
	p.mu.Unlock()

	return PoolStats{
		Idle:        idle,
		Leased:      leased,
		Created:     p.created.Load(),
		Acquired:    p.acquired.Load(),
		InFlight:    p.rc.InFlight(),
		MemoryBytes: p.rc.MemoryUsage(),
		Closed:      closed,
	}
}

// Package searchstate provides reusable per-query state for approximate
// nearest-neighbor traversals over a hybrid tree-plus-graph index.
//
// A traversal needs a visited set, a tree-phase frontier, a graph-phase
// frontier and a handful of counters. Allocating those per query dominates
// latency at high QPS, so searchstate pools them: each in-flight query leases
// one workspace, resets it in O(1) amortized time, and hands it back.
//
// # Quick Start
//
//	pool, _ := searchstate.New(8192, index.NodeCount(),
//	    searchstate.WithMaxInFlight(int64(runtime.GOMAXPROCS(0))),
//	    searchstate.WithMemoryLimit(512<<20),
//	)
//	defer pool.Close()
//
//	ws, err := pool.Acquire(ctx, 0) // 0 = pool default budget
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(ws)
//
//	for !ws.GraphQueue.Empty() && ws.CheckedLeaves < ws.MaxCheck {
//	    c, _ := ws.GraphQueue.Pop()
//	    if ws.CheckAndSet(c.Node) == visited.AlreadySeen {
//	        continue
//	    }
//	    // expand c.Node ...
//	}
//
// # Packages
//
//   - model: node ids and the (node, distance) Cell stored in frontiers
//   - queue: generic bounded binary heap (min and max variants)
//   - visited: fixed-capacity approximate visited set with an exact auditor
//   - workspace: the per-query bundle the traversal reads and writes
//   - metrics/promcollector: Prometheus MetricsCollector
//
// # Approximate Visited Set
//
// The visited set never reports a node as seen when it was not. Under heavy
// hash collisions it may fail to record a node (visited.Overflowed); the
// traversal then expands that node again, which costs work but never recall.
// Enable WithAudit to measure how often that happens.
//
// # Configuration
//
// Pools are configured with functional options or from the environment:
//
//	cfg, _ := searchstate.LoadConfig("SEARCHSTATE")
//	pool, _ := searchstate.NewFromConfig(cfg)
//
// # Concurrency
//
// Pool is safe for concurrent use. Workspaces are not; a leased workspace is
// owned by exactly one goroutine until Release.
package searchstate

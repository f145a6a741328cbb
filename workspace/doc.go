// Package workspace provides the per-query search state of a tree-plus-graph
// ANN index.
//
// A Workspace owns:
//   - a visited.Set sized to the index node count
//   - the tree-phase candidate queue (capacity maxCheck*10)
//   - the graph-phase candidate queue (capacity maxCheck*30)
//   - the leaf counters and the no-better-propagation streak
//
// The traversal algorithm drives it:
//
//	ws.Reset(maxCheck)
//	for ... {
//	    if ws.CheckAndSet(id) == visited.AlreadySeen {
//	        continue
//	    }
//	    ...
//	    if improved {
//	        ws.NoBetterPropagation = 0
//	    } else {
//	        ws.NoBetterPropagation++
//	    }
//	    if ws.NoBetterPropagation >= ws.ContinuousLimit {
//	        break
//	    }
//	}
//
// The workspace holds the counters; when to stop is the traversal's decision.
// Workspaces are managed by searchstate.Pool for reuse across queries.
package workspace

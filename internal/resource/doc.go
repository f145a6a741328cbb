// Package resource implements the Controller that governs workspace pooling.
//
// The Controller provides centralized management of three resource types:
//
//   - Memory: Budget for workspace allocations (non-blocking, fail-fast)
//   - Concurrency: Limit the number of queries holding a workspace at once
//   - Admission: Rate-limit query admission with a token bucket
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        Controller                           │
//	├─────────────────┬─────────────────┬─────────────────────────┤
//	│  Memory Limit   │  In-flight      │  Admission Limiter      │
//	│  (fail-fast)    │  Slots (sem)    │  (token bucket)         │
//	├─────────────────┼─────────────────┼─────────────────────────┤
//	│  AcquireMemory  │  AcquireSlot    │  Admit                  │
//	│  ReleaseMemory  │  TryAcquireSlot │  TryAdmit               │
//	│  MemoryUsage    │  ReleaseSlot    │                         │
//	└─────────────────┴─────────────────┴─────────────────────────┘
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB of workspaces
//	})
//
//	if err := rc.AcquireMemory(ws.Footprint()); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides retry/backoff
//	}
//
// # In-flight Limits
//
// Bounds the number of concurrently executing queries. AcquireSlot blocks
// until a slot frees up or ctx is done:
//
//	if err := rc.AcquireSlot(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseSlot()
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use.
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
package resource

// Package queue implements fixed-capacity binary heaps for search frontiers.
package queue

import (
	"errors"

	"github.com/hupe1980/searchstate/internal/assert"
)

// ErrFull is returned by Push when the heap already holds Cap() items.
// It is an expected outcome: evict the worst item first or treat the
// frontier as saturated.
var ErrFull = errors.New("queue: heap is full")

// Ordered is implemented by heap items. Less reports whether the receiver
// ranks before o (for cells: is nearer).
type Ordered[T any] interface {
	Less(o T) bool
}

// Heap is an array-backed binary heap with a fixed capacity.
// Storage is allocated by Resize and reused across Clear calls.
//
// A min heap pops the best item first and is used for candidate frontiers.
// A max heap keeps the worst item on top and is used for top-K working sets
// together with PushBounded.
//
// Heap is NOT thread-safe.
type Heap[T Ordered[T]] struct {
	isMaxHeap bool
	items     []T // len(items) is the backing storage, size the live prefix
	size      int
	limit     int
	empty     T // returned by Peek and Pop on an empty heap
}

// NewMin initializes a heap that pops the smallest item first.
func NewMin[T Ordered[T]](capacity int) *Heap[T] {
	h := &Heap[T]{}
	h.Resize(capacity)
	return h
}

// NewMax initializes a heap that pops the largest item first.
func NewMax[T Ordered[T]](capacity int) *Heap[T] {
	h := &Heap[T]{isMaxHeap: true}
	h.Resize(capacity)
	return h
}

// NewMinWithEmpty is NewMin with a sentinel that Peek and Pop return when
// the heap is empty, instead of the zero value of T.
func NewMinWithEmpty[T Ordered[T]](capacity int, empty T) *Heap[T] {
	h := NewMin[T](capacity)
	h.empty = empty
	return h
}

// NewMaxWithEmpty is NewMax with an empty sentinel, see NewMinWithEmpty.
func NewMaxWithEmpty[T Ordered[T]](capacity int, empty T) *Heap[T] {
	h := NewMax[T](capacity)
	h.empty = empty
	return h
}

// Resize sets the capacity and empties the heap.
// Backing storage only grows; shrinking the capacity keeps the allocation.
func (h *Heap[T]) Resize(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	if capacity > len(h.items) {
		h.items = make([]T, capacity)
	}
	h.limit = capacity
	h.size = 0
}

// Clear empties the heap in O(1) without releasing storage.
func (h *Heap[T]) Clear() {
	h.size = 0
}

// Len returns the number of items in the heap.
func (h *Heap[T]) Len() int { return h.size }

// Cap returns the maximum number of items the heap accepts.
func (h *Heap[T]) Cap() int { return h.limit }

// Empty reports whether the heap holds no items.
func (h *Heap[T]) Empty() bool { return h.size == 0 }

// Full reports whether Push would return ErrFull.
func (h *Heap[T]) Full() bool { return h.size >= h.limit }

// Allocated returns the number of item slots held in backing storage.
// It can exceed Cap after Resize shrank the heap.
func (h *Heap[T]) Allocated() int { return len(h.items) }

// IsMaxHeap reports whether the heap pops the largest item first.
func (h *Heap[T]) IsMaxHeap() bool { return h.isMaxHeap }

// Push inserts x in O(log n). It returns ErrFull when the heap is at capacity.
func (h *Heap[T]) Push(x T) error {
	if h.size >= h.limit {
		return ErrFull
	}
	h.items[h.size] = x
	h.size++
	h.siftUp(h.size - 1)
	return nil
}

// PushBounded inserts x, evicting the top item when the heap is full and x
// ranks after it. On a max heap this keeps the Cap() smallest items seen.
// It reports whether x was stored.
func (h *Heap[T]) PushBounded(x T) bool {
	if h.size < h.limit {
		h.items[h.size] = x
		h.size++
		h.siftUp(h.size - 1)
		return true
	}
	if h.size == 0 {
		return false
	}
	// Heap is full: x must rank strictly after the top to displace it.
	if !h.before(h.items[0], x) {
		return false
	}
	h.items[0] = x
	h.siftDown(0)
	return true
}

// Peek returns the top item without removing it.
// An empty heap is a caller bug: it panics in debug builds and returns
// (empty, false) otherwise, where empty is the sentinel given to
// NewMinWithEmpty or NewMaxWithEmpty and the zero T for NewMin and NewMax.
// For cells the zero value is a real node at distance 0, so frontiers of
// cells should be built with model.EmptyCell as the sentinel.
func (h *Heap[T]) Peek() (T, bool) {
	if h.size == 0 {
		assert.That(false, "peek on empty heap")
		return h.empty, false
	}
	return h.items[0], true
}

// Pop removes and returns the top item.
// An empty heap is a caller bug: it panics in debug builds and returns
// (empty, false) otherwise, where empty is the sentinel given to
// NewMinWithEmpty or NewMaxWithEmpty and the zero T for NewMin and NewMax.
// For cells the zero value is a real node at distance 0, so frontiers of
// cells should be built with model.EmptyCell as the sentinel.
func (h *Heap[T]) Pop() (T, bool) {
	if h.size == 0 {
		assert.That(false, "pop on empty heap")
		return h.empty, false
	}
	root := h.items[0]
	h.size--
	if h.size > 0 {
		h.items[0] = h.items[h.size]
		h.siftDown(0)
	}
	return root, true
}

// Items returns the live items in heap order (not sorted).
// The slice aliases internal storage and is valid until the next mutation.
func (h *Heap[T]) Items() []T {
	return h.items[:h.size]
}

// before reports whether a belongs above b in the heap.
func (h *Heap[T]) before(a, b T) bool {
	if h.isMaxHeap {
		return b.Less(a)
	}
	return a.Less(b)
}

// siftUp moves the element at i up with a single final write.
func (h *Heap[T]) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		p := (i - 1) / 2
		if !h.before(item, h.items[p]) {
			break
		}
		h.items[i] = h.items[p]
		i = p
	}
	h.items[i] = item
}

// siftDown moves the element at i down with a single final write.
func (h *Heap[T]) siftDown(i int) {
	n := h.size
	item := h.items[i]
	for {
		l := 2*i + 1
		if l >= n {
			break
		}
		best := l
		if r := l + 1; r < n && h.before(h.items[r], h.items[l]) {
			best = r
		}
		if !h.before(h.items[best], item) {
			break
		}
		h.items[i] = h.items[best]
		i = best
	}
	h.items[i] = item
}

package visited

import (
	"math/bits"

	"github.com/hupe1980/searchstate/internal/assert"
	"github.com/hupe1980/searchstate/internal/mem"
	"github.com/hupe1980/searchstate/model"
)

// MaxChainSteps is the number of slot checks per block before giving up on it.
const MaxChainSteps = 8

// Outcome is the result of Set.CheckAndSet.
type Outcome uint8

const (
	// FirstSeen means the id was recorded now; the caller should expand the node.
	FirstSeen Outcome = iota
	// AlreadySeen means the id was recorded earlier in this query; skip it.
	AlreadySeen
	// Overflowed means neither block had room along the id's collision chain.
	// The id is not tracked and the caller proceeds as if it were unseen.
	Overflowed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case FirstSeen:
		return "first_seen"
	case AlreadySeen:
		return "already_seen"
	case Overflowed:
		return "overflowed"
	default:
		return "unknown"
	}
}

// Unseen reports whether the caller should treat the node as not yet visited.
func (o Outcome) Unseen() bool {
	return o != AlreadySeen
}

// Set is a fixed-capacity approximate membership set over node ids.
//
// It holds two open-addressed hash blocks in one contiguous buffer. The second
// block is only consulted after some collision chain in the first block filled up;
// Clear then has to zero both. Ids are stored offset by one so that 0 marks an
// empty slot.
//
// Set never reports AlreadySeen for an id that was not recorded. Under heavy
// collisions it may fail to record an id (Overflowed), which costs a redundant
// expansion but never prunes an unseen node.
//
// Set is NOT thread-safe.
type Set struct {
	table        []uint32
	mask         uint32
	secondActive bool

	firstSeen   int
	alreadySeen int
	overflowed  int
}

// New creates a set sized for expectedSize ids.
func New(expectedSize int) *Set {
	s := &Set{}
	s.Init(expectedSize)
	return s
}

// Init sizes the set for expectedSize ids and clears both blocks.
// Each block gets 2^(bitlen(expectedSize)+1) slots, e.g. 64 for 17.
// Storage is reused when the block size does not change.
func (s *Set) Init(expectedSize int) {
	if expectedSize < 0 {
		expectedSize = 0
	}
	blockLen := slotsPerBlock(expectedSize)
	if len(s.table) == 2*blockLen {
		clear(s.table)
	} else {
		s.table = mem.AllocAlignedUint32(2 * blockLen)
	}
	s.mask = uint32(blockLen - 1)
	s.secondActive = false
	s.resetCounters()
}

func slotsPerBlock(expectedSize int) int {
	return 1 << (bits.Len(uint(expectedSize)) + 1)
}

// SizeBytesFor returns the buffer size Init(expectedSize) allocates.
func SizeBytesFor(expectedSize int) int64 {
	if expectedSize < 0 {
		expectedSize = 0
	}
	return int64(2*slotsPerBlock(expectedSize)) * 4
}

// Clear forgets all ids without reallocating. Only the first block is zeroed
// unless the second block was used since the last Clear.
func (s *Set) Clear() {
	if s.secondActive {
		clear(s.table)
		s.secondActive = false
	} else {
		clear(s.table[:s.blockLen()])
	}
	s.resetCounters()
}

// CheckAndSet records id and reports whether it had been recorded before.
// Negative ids and an uninitialized set are caller bugs: debug builds panic,
// release builds report Overflowed without touching the table.
func (s *Set) CheckAndSet(id model.NodeID) Outcome {
	if id < 0 || s.table == nil {
		assert.That(false, "check-and-set of node id %d on set with %d slots", id, len(s.table))
		s.overflowed++
		return Overflowed
	}
	v := uint32(id) + 1
	n := s.blockLen()

	if o, ok := s.walk(s.table[:n], v); ok {
		s.count(o)
		return o
	}

	s.secondActive = true
	if o, ok := s.walk(s.table[n:], v); ok {
		s.count(o)
		return o
	}

	s.overflowed++
	return Overflowed
}

// walk follows the collision chain of v inside one block. The first advance
// (i == 0) lands on the same slot again, so a chain covers at most
// MaxChainSteps-1 distinct slots: s, s+1, s+3, s+6, s+10, s+15, s+21.
func (s *Set) walk(block []uint32, v uint32) (Outcome, bool) {
	slot := hash(v) & s.mask
	for i := uint32(0); i < MaxChainSteps; i++ {
		switch block[slot] {
		case 0:
			block[slot] = v
			return FirstSeen, true
		case v:
			return AlreadySeen, true
		}
		slot = (slot + i) & s.mask
	}
	return Overflowed, false
}

func hash(v uint32) uint32 {
	return v*99991 + bits.RotateLeft32(v, 2) + 101
}

func (s *Set) count(o Outcome) {
	if o == FirstSeen {
		s.firstSeen++
	} else {
		s.alreadySeen++
	}
}

func (s *Set) resetCounters() {
	s.firstSeen = 0
	s.alreadySeen = 0
	s.overflowed = 0
}

func (s *Set) blockLen() int {
	if s.table == nil {
		return 0
	}
	return int(s.mask) + 1
}

// SlotsPerBlock returns the number of slots in each block.
func (s *Set) SlotsPerBlock() int { return s.blockLen() }

// SecondBlockActive reports whether the second block holds data.
func (s *Set) SecondBlockActive() bool { return s.secondActive }

// SizeBytes returns the size of the backing buffer.
func (s *Set) SizeBytes() int64 { return int64(len(s.table)) * 4 }

// Stats holds per-query counters, reset by Clear.
type Stats struct {
	SlotsPerBlock     int
	FirstSeen         int
	AlreadySeen       int
	Overflowed        int
	SecondBlockActive bool
}

// OverflowRate returns the fraction of unseen checks that could not be recorded.
func (st Stats) OverflowRate() float64 {
	total := st.FirstSeen + st.Overflowed
	if total == 0 {
		return 0
	}
	return float64(st.Overflowed) / float64(total)
}

// Stats returns the counters accumulated since the last Clear.
func (s *Set) Stats() Stats {
	return Stats{
		SlotsPerBlock:     s.blockLen(),
		FirstSeen:         s.firstSeen,
		AlreadySeen:       s.alreadySeen,
		Overflowed:        s.overflowed,
		SecondBlockActive: s.secondActive,
	}
}

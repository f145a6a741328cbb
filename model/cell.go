package model

import (
	"fmt"
	"math"
)

// NodeID identifies a node (tree node or graph vertex) within a single index.
// It is strictly 32-bit, matching the dense ids produced by the index builder.
type NodeID int32

// InvalidNode marks an absent node.
const InvalidNode NodeID = -1

// MaxNodeID is the largest usable NodeID.
const MaxNodeID NodeID = math.MaxInt32

// MaxDist is the distance carried by an empty cell.
var MaxDist = float32(math.Inf(1))

// Cell is a candidate entry on a search frontier.
// Cells are values: once pushed they are never mutated in place.
type Cell struct {
	Node     NodeID
	Distance float32
}

// NewCell returns a cell for node at the given distance.
func NewCell(node NodeID, distance float32) Cell {
	return Cell{Node: node, Distance: distance}
}

// EmptyCell returns the sentinel cell {InvalidNode, MaxDist}.
func EmptyCell() Cell {
	return Cell{Node: InvalidNode, Distance: MaxDist}
}

// IsEmpty reports whether c is the sentinel cell.
func (c Cell) IsEmpty() bool {
	return c.Node == InvalidNode
}

// Less orders cells by ascending distance (nearest first).
func (c Cell) Less(o Cell) bool {
	return c.Distance < o.Distance
}

// String returns a string representation of the Cell.
func (c Cell) String() string {
	return fmt.Sprintf("Cell(%d:%g)", c.Node, c.Distance)
}

// Package model defines the value types shared by the search state packages.
//
// # Identity Types
//
//   - NodeID: dense index node identifier (int32, InvalidNode = -1)
//
// # Candidate Types
//
//   - Cell: a (node, distance) pair held by the candidate frontiers.
//     Lower distance is better; the empty cell carries MaxDist.
package model

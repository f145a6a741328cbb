// Package visited tracks which index nodes a query has already expanded.
//
// Set is an approximate, capacity-bounded membership structure: two
// open-addressed hash blocks of 2^(bitlen(n)+1) slots each, with at most
// MaxChainSteps slot checks per block. Its memory is fixed at Init and Clear never
// reallocates, so a pooled workspace can reuse it for every query.
//
// CheckAndSet returns a three-way Outcome:
//
//	FirstSeen    recorded now, expand the node
//	AlreadySeen  recorded earlier in this query, skip it
//	Overflowed   not recorded, expand it anyway
//
// Auditor shadows a Set with an exact roaring bitmap to measure how often the
// approximation causes redundant expansions.
package visited

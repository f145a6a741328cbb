// Package assert provides precondition checks for the search hot path.
//
// Checks are compiled in only with the searchstate_debug build tag:
//
//	go test -tags searchstate_debug ./...
//
// Release builds compile every check to a no-op so callers must still handle
// the explicit empty/overflow results returned by the data structures.
package assert

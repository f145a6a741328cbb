//go:build searchstate_debug

package assert

import "fmt"

// Enabled reports whether precondition checks are compiled in.
const Enabled = true

// That panics with the formatted message if cond is false.
func That(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("searchstate: "+format, args...))
	}
}

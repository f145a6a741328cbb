//go:build !searchstate_debug

package assert

// Enabled reports whether precondition checks are compiled in.
const Enabled = false

// That is a no-op in release builds.
func That(bool, string, ...any) {}

//go:build !debug

package assert

// Enabled reports whether precondition checks are compiled in.
const Enabled = false

// That is a no-op in release builds.
func That(bool, string, ...any) {}

// DelayInRange is a no-op in release builds.
func DelayInRange(float64, float64, float64) {}

// Channel is a no-op in release builds.
func Channel(int, int) {}

// GuardOutput is a no-op in release builds and always reports false.
func GuardOutput(string, []float32) bool { return false }

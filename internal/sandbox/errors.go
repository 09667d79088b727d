package sandbox

import "fmt"

// ErrorKind classifies a sandbox failure.
type ErrorKind string

const (
	// ErrTimeout means the wall-clock limit elapsed and the process was
	// killed.
	ErrTimeout ErrorKind = "timeout"

	// ErrRuntime means the interpreter exited non-zero or produced no
	// output artifact.
	ErrRuntime ErrorKind = "runtime_error"

	// ErrDisallowedPattern means static screening rejected the source
	// before any process was spawned.
	ErrDisallowedPattern ErrorKind = "disallowed_pattern"
)

// Error is a typed sandbox failure. Every Error consumes a pipeline
// attempt; none leaves orphaned processes or files behind.
type Error struct {
	Kind   ErrorKind
	Detail string

	// Stderr carries the tail of the interpreter's stderr for runtime
	// failures, empty otherwise.
	Stderr string
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("sandbox %s: %s: %s", e.Kind, e.Detail, e.Stderr)
	}
	return fmt.Sprintf("sandbox %s: %s", e.Kind, e.Detail)
}

package codegen

import "fmt"

// GenerationError means the generation agent could not produce a usable
// spec. It is distinct from a render failure: the orchestrator counts both
// against the attempt budget but logs them under different stages.
type GenerationError struct {
	// Reason is a stable short code: "model_call", "empty_output",
	// "answer_leak", "unknown_symbol".
	Reason string

	Detail string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed (%s): %s: %v", e.Reason, e.Detail, e.Err)
	}
	return fmt.Sprintf("generation failed (%s): %s", e.Reason, e.Detail)
}

func (e *GenerationError) Unwrap() error { return e.Err }

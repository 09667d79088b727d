package review

import "github.com/vidyaai/diagramgen/internal/llm"

// The checks are ordered by severity; the first failing check sets
// failure_category. Answer leaks and structural mismatches can never be
// repaired by an in-place fix, so the category gates fixability downstream.
const reviewChecks = `Evaluate the image against these checks, in order:
1. answer_leak - the image displays, labels, or implies the value the
   question asks the student to compute. Automatic fail.
2. data_mismatch - quantities shown contradict the quantities given in the
   question. Automatic fail.
3. unsolvable - the diagram omits or distorts information the student needs
   to solve the question. Automatic fail.
4. missing_labels - a component, axis, node, or force lacks its label.
5. readability - text is clipped, overlapping, too small, or the drawing is
   cluttered beyond legibility.

Report the first failing check as failure_category, or "none" when the
image passes. Set fixable true only when the sole problems are labels or
readability and the underlying structure is correct. When failing, write
corrected_description: a complete replacement description that would
produce an acceptable diagram.`

const renderReviewSystem = `You review programmatically rendered diagrams
for STEM assignments. The structure was drawn from code, so your focus is
whether the right thing was drawn and whether every element is labeled and
legible.

` + reviewChecks

const imageReviewSystem = `You review AI-generated diagram images for STEM
assignments. Generative models invent components, duplicate parts, and
garble text, so scrutinize the structure itself before anything else: count
components, trace connections, read every label character by character.

` + reviewChecks

func verdictSchema() *llm.Schema {
	return &llm.Schema{
		Name:        "diagram-review-verdict",
		Description: "Quality judgment of one candidate diagram image",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"passed": map[string]any{
					"type":        "boolean",
					"description": "True when the image is acceptable as-is",
				},
				"reason": map[string]any{
					"type":        "string",
					"description": "One-sentence summary of the judgment",
				},
				"issues": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Concrete defects, empty when passed",
				},
				"failure_category": map[string]any{
					"type": "string",
					"enum": []any{"answer_leak", "data_mismatch", "unsolvable", "missing_labels", "readability", "none"},
				},
				"fixable": map[string]any{
					"type":        "boolean",
					"description": "True when an in-place text fix suffices",
				},
				"corrected_description": map[string]any{
					"type":        "string",
					"description": "Replacement description for the next attempt, empty when passed",
				},
			},
			"required":             []any{"passed", "reason", "issues", "failure_category", "fixable", "corrected_description"},
			"additionalProperties": false,
		},
	}
}

package diagram

// Domain is a STEM subject area from the fixed classification taxonomy.
type Domain string

const (
	DomainElectrical      Domain = "electrical"
	DomainMechanical      Domain = "mechanical"
	DomainComputerScience Domain = "computer_science"
	DomainPhysics         Domain = "physics"
	DomainChemistry       Domain = "chemistry"
	DomainMathematics     Domain = "mathematics"
	DomainCivil           Domain = "civil"
	DomainGeneral         Domain = "general"
)

// Backend identifies one of the five rendering strategies.
type Backend string

const (
	BackendProcedural Backend = "procedural-plot"
	BackendCircuit    Backend = "circuit-schematic"
	BackendGraph      Backend = "graph-layout"
	BackendMarkup     Backend = "markup-to-raster"
	BackendImage      Backend = "generative-image"
)

// Complexity grades how involved the requested diagram is.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Request describes one diagram to produce for an assignment question.
// Immutable once constructed.
type Request struct {
	// QuestionText is the full question the diagram accompanies.
	QuestionText string

	// Description is the natural-language description of the diagram,
	// extracted from the question by the upstream assignment generator.
	// Empty means the question text itself is the description.
	Description string

	// DomainHint is an optional subject hint from upstream (course name,
	// syllabus tag). The classifier treats it as a prior, not a label.
	DomainHint string

	AssignmentID  string
	QuestionIndex int
}

// DiagramDescription returns the text generation agents should draw from:
// the extracted description when present, otherwise the question itself.
func (r Request) DiagramDescription() string {
	if r.Description != "" {
		return r.Description
	}
	return r.QuestionText
}

// Classification is the classifier's label for a request. Produced exactly
// once per request and read-only afterwards.
type Classification struct {
	Domain      Domain
	DiagramType string
	Complexity  Complexity

	// AISuitable reports whether a generative image model tends to produce
	// acceptable results for this diagram type.
	AISuitable bool

	// PreferredBackend is the taxonomy's first-choice renderer.
	PreferredBackend Backend

	// Degraded is true when the model call failed and the keyword fallback
	// produced this classification.
	Degraded bool
}

// RenderSpec is the input to a renderer: which backend, and what to render.
// A failed review never mutates a spec; a corrected spec is a new value
// appended to the attempt history.
type RenderSpec struct {
	Backend Backend

	// Subtype selects the renderer flavor within a backend, e.g. "pyplot",
	// "schemdraw", "networkx", "svg", "imagen".
	Subtype string

	// Source is generated renderer input: Python source for the sandboxed
	// backends, SVG markup for the markup backend. Empty for the
	// generative-image backend, which renders from Description alone.
	Source string

	// Description is the diagram description the source was generated from,
	// carried alongside for review and for image-model prompts.
	Description string
}

// RenderResult is one produced candidate image.
type RenderResult struct {
	ImageBytes []byte
	Backend    Backend
	Attempt    int
}

// ReviewVerdict is the quality gate's judgment of a candidate image.
type ReviewVerdict struct {
	Passed bool
	Reason string

	// Issues lists concrete defects when the review fails.
	Issues []string

	// Fixable means the defects are textual or labeling errors that an
	// in-place fix can correct without changing diagram structure. Leaked
	// answers and structural mismatches are never fixable.
	Fixable bool

	// CorrectedDescription, when non-empty, is a replacement description for
	// the next generation attempt.
	CorrectedDescription string

	// Degraded is true when the reviewer could not run and the gate waved
	// the image through. Recorded for audit; counts toward no invariant.
	Degraded bool
}

// Status is the terminal disposition of a pipeline run.
type Status string

const (
	StatusAccepted           Status = "accepted"
	StatusExhausted          Status = "exhausted"
	StatusBackendUnavailable Status = "backend_unavailable"
)

// Outcome is the full record of one pipeline run.
type Outcome struct {
	Status Status

	// FinalImage is non-nil exactly when Status == StatusAccepted.
	FinalImage []byte

	Classification Classification

	// Attempts and Verdicts are append-only logs, in order. Verdicts has one
	// entry per reviewed attempt; a render failure leaves no verdict.
	Attempts []RenderResult
	Verdicts []ReviewVerdict
}

// Accepted reports whether the run produced a usable image.
func (o *Outcome) Accepted() bool {
	return o.Status == StatusAccepted && o.FinalImage != nil
}

// LastVerdict returns the most recent review verdict, or nil when no attempt
// reached review.
func (o *Outcome) LastVerdict() *ReviewVerdict {
	if len(o.Verdicts) == 0 {
		return nil
	}
	return &o.Verdicts[len(o.Verdicts)-1]
}

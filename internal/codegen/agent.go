package codegen

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/llm"
	"github.com/vidyaai/diagramgen/internal/router"
)

// Input is everything one generation attempt needs.
type Input struct {
	Route          router.Route
	Request        diagram.Request
	Classification diagram.Classification

	// CorrectedDescription, when non-empty, replaces the request description
	// for this attempt. Set by the orchestrator after a failed review.
	CorrectedDescription string

	// Attempt is 1-based, for logging only.
	Attempt int
}

// Agent turns a routed request into a renderable spec: Python source for
// the sandboxed backends, SVG markup for the markup backend, a bare
// description for the generative-image backend.
type Agent struct {
	provider llm.Provider
	symbols  *SymbolTable
	logger   *zap.Logger
}

// NewAgent creates an Agent. symbols may be nil; the static table is used.
func NewAgent(provider llm.Provider, symbols *SymbolTable, logger *zap.Logger) *Agent {
	if symbols == nil {
		symbols = StaticSymbols()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{provider: provider, symbols: symbols, logger: logger}
}

var (
	reElementRef = regexp.MustCompile(`\belm\s*\.\s*([A-Z]\w*)`)
	reGateRef    = regexp.MustCompile(`\blogic\s*\.\s*([A-Z]\w*)`)
)

// Generate produces the render spec for one attempt. Failures are
// *GenerationError; the spec is never partially filled.
func (a *Agent) Generate(ctx context.Context, in Input) (*diagram.RenderSpec, error) {
	desc := in.Request.DiagramDescription()
	if in.CorrectedDescription != "" {
		desc = in.CorrectedDescription
	}

	// The image backend prompts its model from the description directly;
	// there is no source to generate.
	if in.Route.Subtype == "imagen" {
		return &diagram.RenderSpec{
			Backend:     in.Route.Backend,
			Subtype:     in.Route.Subtype,
			Description: desc,
		}, nil
	}

	system, user := buildPrompt(in, a.symbols)

	resp, err := a.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		MaxTokens:   4096,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, &GenerationError{Reason: "model_call", Detail: "generation request failed", Err: err}
	}

	raw := contentText(resp.Content)

	var source string
	if in.Route.Subtype == "svg" {
		source = ExtractSVG(raw)
	} else {
		source = ExtractCode(raw)
	}
	if source == "" {
		return nil, &GenerationError{Reason: "empty_output", Detail: "model returned no usable source"}
	}

	if LeaksAnswer(source) {
		a.logger.Warn("generated source labels an answer value",
			zap.String("subtype", in.Route.Subtype),
			zap.Int("attempt", in.Attempt))
		return nil, &GenerationError{Reason: "answer_leak", Detail: "source labels the answer value"}
	}

	if err := a.checkSymbols(source, in.Route.Subtype); err != nil {
		return nil, err
	}

	a.logger.Debug("source generated",
		zap.String("subtype", in.Route.Subtype),
		zap.Int("attempt", in.Attempt),
		zap.Int("source_bytes", len(source)))

	return &diagram.RenderSpec{
		Backend:     in.Route.Backend,
		Subtype:     in.Route.Subtype,
		Source:      source,
		Description: desc,
	}, nil
}

// checkSymbols rejects schemdraw source that references element names the
// installed toolchain does not have.
func (a *Agent) checkSymbols(source, subtype string) error {
	if subtype != "schemdraw" && subtype != "schemdraw-logic" {
		return nil
	}
	refs := reElementRef.FindAllStringSubmatch(source, -1)
	refs = append(refs, reGateRef.FindAllStringSubmatch(source, -1)...)
	for _, m := range refs {
		name := m[1]
		if a.symbols.Has(name) {
			continue
		}
		detail := fmt.Sprintf("element %q does not exist", name)
		if s := a.symbols.Suggest(name); s != "" {
			detail = fmt.Sprintf("element %q does not exist (did the model mean %q?)", name, s)
		}
		return &GenerationError{Reason: "unknown_symbol", Detail: detail}
	}
	return nil
}

// contentText unwraps a raw-text response: providers return plain text as a
// JSON string when no schema is set, but some return it unquoted.
func contentText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

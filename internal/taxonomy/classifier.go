package taxonomy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/llm"
)

// ClassifierConfig holds tuning for the model call.
type ClassifierConfig struct {
	MaxTokens   int
	Temperature float64
}

// DefaultClassifierConfig returns sensible defaults.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MaxTokens:   256,
		Temperature: 0,
	}
}

// Classifier labels a question with a taxonomy entry. It never returns an
// error: any model failure, unparseable output, or out-of-taxonomy label
// degrades to the deterministic keyword fallback.
type Classifier struct {
	provider llm.Provider
	cfg      ClassifierConfig
	logger   *zap.Logger
}

// NewClassifier creates a classifier. A nil provider means keyword-only.
func NewClassifier(provider llm.Provider, cfg ClassifierConfig, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{provider: provider, cfg: cfg, logger: logger}
}

// classificationOutput is the raw model response.
type classificationOutput struct {
	Domain      string `json:"domain"`
	DiagramType string `json:"diagram_type"`
	Complexity  string `json:"complexity"`
}

// Classify produces exactly one Classification for the question.
// The model picks domain, type, and complexity; the AISuitable flag and
// preferred backend always come from the taxonomy table, never from the
// model.
func (c *Classifier) Classify(ctx context.Context, questionText, domainHint string) diagram.Classification {
	if c.provider == nil {
		return c.degrade(questionText, domainHint, "no classification provider configured")
	}

	ctx = llm.WithPurpose(ctx, "classification")

	req := llm.Request{
		System: classifySystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildClassifyMessage(questionText, domainHint)},
		},
		Schema:      ClassificationSchema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		return c.degrade(questionText, domainHint, fmt.Sprintf("classification call failed: %v", err))
	}

	var raw classificationOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return c.degrade(questionText, domainHint, fmt.Sprintf("unparseable classification: %v", err))
	}

	domain := diagram.Domain(raw.Domain)
	entry, ok := Lookup(domain, raw.DiagramType)
	if !ok {
		return c.degrade(questionText, domainHint,
			fmt.Sprintf("out-of-taxonomy label %s/%s", raw.Domain, raw.DiagramType))
	}

	complexity := diagram.Complexity(raw.Complexity)
	switch complexity {
	case diagram.ComplexitySimple, diagram.ComplexityModerate, diagram.ComplexityComplex:
	default:
		complexity = diagram.ComplexityModerate
	}

	return diagram.Classification{
		Domain:           domain,
		DiagramType:      raw.DiagramType,
		Complexity:       complexity,
		AISuitable:       entry.AISuitable,
		PreferredBackend: entry.PreferredBackend,
	}
}

// degrade falls back to the keyword scanner, marking the result.
func (c *Classifier) degrade(questionText, domainHint, reason string) diagram.Classification {
	c.logger.Warn("classification degraded to keyword fallback", zap.String("reason", reason))
	cls := KeywordClassify(questionText, domainHint)
	cls.Degraded = true
	return cls
}

const classifySystemPrompt = `You classify STEM assignment questions by the technical diagram they need.

Rules:
- Choose exactly one domain and one diagram_type from the taxonomy below. Never invent new labels.
- If several entries could apply, choose the most specific one.
- complexity grades the diagram itself, not the question: "simple" for a handful of elements, "complex" for many interconnected parts.`

// buildClassifyMessage enumerates the taxonomy so the model can only pick
// listed labels; the schema enforces the domain enum, the candidate check
// enforces the type.
func buildClassifyMessage(questionText, domainHint string) string {
	var b strings.Builder

	b.WriteString("Taxonomy:\n")
	for _, d := range Domains() {
		names := make([]string, 0, len(catalog[d]))
		for _, t := range catalog[d] {
			names = append(names, t.Name)
		}
		fmt.Fprintf(&b, "- %s: %s\n", d, strings.Join(names, ", "))
	}

	if domainHint != "" {
		fmt.Fprintf(&b, "\nDomain hint from the course context (a prior, not a label): %s\n", domainHint)
	}

	b.WriteString("\nQuestion:\n")
	b.WriteString(questionText)

	return b.String()
}

// Package review is the vision quality gate: every candidate image passes
// through a model that sees the image next to the question and judges
// whether the diagram serves it.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/llm"
)

// ProviderFactory rebuilds the review provider after a transient failure.
// A fresh client clears wedged connections before the single retry.
type ProviderFactory func(ctx context.Context) (llm.Provider, error)

// Gate reviews candidate images. One Gate serves one renderer family; the
// constructors differ only in the system prompt. A Gate is shared across
// concurrent pipeline runs, so the rebuildable provider sits behind a mutex.
type Gate struct {
	mu       sync.Mutex
	provider llm.Provider

	factory ProviderFactory
	system  string
	logger  *zap.Logger
}

// NewRenderReviewer reviews images produced by the code backends, where
// structure is deterministic and labeling is the usual failure.
func NewRenderReviewer(p llm.Provider, factory ProviderFactory, logger *zap.Logger) *Gate {
	return newGate(p, factory, renderReviewSystem, logger)
}

// NewImageReviewer reviews generative-model images, where hallucinated
// structure is the usual failure.
func NewImageReviewer(p llm.Provider, factory ProviderFactory, logger *zap.Logger) *Gate {
	return newGate(p, factory, imageReviewSystem, logger)
}

func newGate(p llm.Provider, factory ProviderFactory, system string, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{provider: p, factory: factory, system: system, logger: logger}
}

// verdict is the model's wire-format judgment.
type verdict struct {
	Passed               bool     `json:"passed"`
	Reason               string   `json:"reason"`
	Issues               []string `json:"issues"`
	FailureCategory      string   `json:"failure_category"`
	Fixable              bool     `json:"fixable"`
	CorrectedDescription string   `json:"corrected_description"`
}

// Review judges one candidate image. It never returns an error for model
// trouble: one retry on a rebuilt client, then a degraded pass-through
// verdict so a broken reviewer cannot stall the pipeline.
func (g *Gate) Review(ctx context.Context, question string, spec *diagram.RenderSpec, image []byte) (*diagram.ReviewVerdict, error) {
	req := g.buildRequest(question, spec, image)

	resp, err := g.currentProvider().Generate(ctx, req)
	if err != nil {
		g.logger.Warn("review call failed, rebuilding provider for one retry", zap.Error(err))
		resp, err = g.retryOnce(ctx, req)
	}
	if err != nil {
		g.logger.Warn("review unavailable, passing image through", zap.Error(err))
		return &diagram.ReviewVerdict{
			Passed:   true,
			Reason:   "review skipped",
			Degraded: true,
		}, nil
	}

	var v verdict
	if err := json.Unmarshal(resp.Content, &v); err != nil {
		g.logger.Warn("review verdict unparseable, passing image through", zap.Error(err))
		return &diagram.ReviewVerdict{
			Passed:   true,
			Reason:   "review skipped",
			Degraded: true,
		}, nil
	}

	return normalize(v), nil
}

func (g *Gate) currentProvider() llm.Provider {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.provider
}

// retryOnce rebuilds the provider and retries on the fresh client. The fresh
// provider is also published for later reviews; the retry itself uses the
// local reference so a concurrent rebuild cannot swap it mid-flight.
func (g *Gate) retryOnce(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p := g.currentProvider()
	if g.factory != nil {
		fresh, ferr := g.factory(ctx)
		if ferr != nil {
			return nil, fmt.Errorf("rebuild review provider: %w", ferr)
		}
		g.mu.Lock()
		g.provider = fresh
		g.mu.Unlock()
		p = fresh
	}
	return p.Generate(ctx, req)
}

func (g *Gate) buildRequest(question string, spec *diagram.RenderSpec, image []byte) llm.Request {
	user := fmt.Sprintf("Question the diagram accompanies:\n%s\n\nThe diagram is supposed to show:\n%s",
		question, spec.Description)

	return llm.Request{
		System: g.system,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: user,
			Images:  []llm.ImagePart{{MediaType: "image/png", Data: image}},
		}},
		Schema:    verdictSchema(),
		MaxTokens: 1024,
	}
}

// fixableCategories are the only failures an in-place fix can address.
// Everything else forces regeneration or rejection regardless of what the
// model claimed.
var fixableCategories = map[string]bool{
	"missing_labels": true,
	"readability":    true,
}

// normalize applies the hard rules the model is not trusted with: a passed
// verdict carries no issues, and fixability is capped by category.
func normalize(v verdict) *diagram.ReviewVerdict {
	out := &diagram.ReviewVerdict{
		Passed:               v.Passed,
		Reason:               v.Reason,
		Issues:               v.Issues,
		Fixable:              v.Fixable,
		CorrectedDescription: v.CorrectedDescription,
	}
	if out.Passed {
		out.Issues = nil
		out.Fixable = false
		return out
	}
	if !fixableCategories[v.FailureCategory] {
		out.Fixable = false
	}
	return out
}

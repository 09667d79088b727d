// Package backend hosts the five rendering strategies behind one interface.
// The orchestrator talks to renderers only through Renderer; which concrete
// renderer serves a request is the router's decision, resolved here.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidyaai/diagramgen/internal/diagram"
)

// ErrBackendUnavailable means the selected backend cannot serve requests at
// all (missing credentials, no image provider configured). The pipeline
// terminates the run instead of burning attempts.
var ErrBackendUnavailable = errors.New("render backend unavailable")

// Capabilities declares what a renderer can do beyond plain rendering.
type Capabilities struct {
	// SupportsFix means the renderer can correct a produced image in place.
	// Only the generative-image renderer does; code backends regenerate.
	SupportsFix bool
}

// Renderer turns a spec into PNG bytes.
type Renderer interface {
	Name() string
	Render(ctx context.Context, spec *diagram.RenderSpec) ([]byte, error)
	Capabilities() Capabilities
}

// Fixer is the optional in-place correction interface. Asserted by the
// orchestrator only when Capabilities().SupportsFix is true.
type Fixer interface {
	Fix(ctx context.Context, spec *diagram.RenderSpec, image []byte, issues []string) ([]byte, error)
}

// Registry resolves a backend identifier to its renderer.
type Registry struct {
	renderers map[diagram.Backend]Renderer
}

// NewRegistry builds the registry from the renderers that are actually
// configured. A nil renderer leaves its backend unregistered.
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{renderers: make(map[diagram.Backend]Renderer)}
	for _, rend := range renderers {
		if rend != nil {
			r.renderers[diagram.Backend(rend.Name())] = rend
		}
	}
	return r
}

// Get returns the renderer for a backend, or ErrBackendUnavailable.
func (r *Registry) Get(b diagram.Backend) (Renderer, error) {
	rend, ok := r.renderers[b]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, b)
	}
	return rend, nil
}

package backend

import (
	"context"
	"fmt"

	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/sandbox"
)

// sandboxed executes generated Python through the sandbox runner. The
// procedural-plot, circuit-schematic, and graph-layout backends are all
// instances of it; the subtype on the spec selects the toolchain.
type sandboxed struct {
	name   diagram.Backend
	runner *sandbox.Runner
}

// NewProcedural returns the matplotlib plot renderer.
func NewProcedural(runner *sandbox.Runner) Renderer {
	return &sandboxed{name: diagram.BackendProcedural, runner: runner}
}

// NewCircuit returns the schemdraw schematic renderer.
func NewCircuit(runner *sandbox.Runner) Renderer {
	return &sandboxed{name: diagram.BackendCircuit, runner: runner}
}

// NewGraph returns the networkx graph renderer.
func NewGraph(runner *sandbox.Runner) Renderer {
	return &sandboxed{name: diagram.BackendGraph, runner: runner}
}

func (s *sandboxed) Name() string { return string(s.name) }

func (s *sandboxed) Capabilities() Capabilities {
	// Code is regenerated, never patched in place.
	return Capabilities{SupportsFix: false}
}

func (s *sandboxed) Render(ctx context.Context, spec *diagram.RenderSpec) ([]byte, error) {
	if spec.Source == "" {
		return nil, fmt.Errorf("%s: spec carries no source", s.name)
	}
	return s.runner.Execute(ctx, spec.Source, spec.Subtype)
}

package backend

import (
	"context"
	"fmt"

	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/raster"
)

// markup rasterizes generated SVG in-process.
type markup struct {
	opts raster.Options
}

// NewMarkup returns the markup-to-raster renderer.
func NewMarkup() Renderer {
	return &markup{opts: raster.Options{MinWidth: 800, MinHeight: 600}}
}

func (m *markup) Name() string { return string(diagram.BackendMarkup) }

func (m *markup) Capabilities() Capabilities {
	return Capabilities{SupportsFix: false}
}

func (m *markup) Render(ctx context.Context, spec *diagram.RenderSpec) ([]byte, error) {
	if spec.Source == "" {
		return nil, fmt.Errorf("%s: spec carries no markup", m.Name())
	}
	return raster.Convert(spec.Source, m.opts)
}

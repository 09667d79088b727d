package backend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/llm"
)

// imageGen renders through a generative image model. It is the only
// renderer that can fix a produced image in place: the model re-receives
// its own output plus the review issues and edits rather than re-imagines.
type imageGen struct {
	provider llm.ImageProvider
	logger   *zap.Logger
}

// NewImage returns the generative-image renderer, or nil when no image
// provider is configured. NewRegistry skips nil renderers, so an
// unconfigured image backend surfaces as ErrBackendUnavailable.
func NewImage(provider llm.ImageProvider, logger *zap.Logger) Renderer {
	if provider == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &imageGen{provider: provider, logger: logger}
}

func (g *imageGen) Name() string { return string(diagram.BackendImage) }

func (g *imageGen) Capabilities() Capabilities {
	return Capabilities{SupportsFix: true}
}

const imageStyleRules = `Technical textbook illustration style: clean line art
on a white background, every part labeled with legible text, no decorative
elements, no watermarks. At least 800x600 pixels. Do not include any answer,
solution, or computed value in the image.`

func (g *imageGen) Render(ctx context.Context, spec *diagram.RenderSpec) ([]byte, error) {
	prompt := fmt.Sprintf("Draw this diagram for a STEM assignment:\n%s\n\n%s",
		spec.Description, imageStyleRules)

	res, err := g.provider.GenerateImage(ctx, llm.ImageRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("image generation: %w", err)
	}
	if res.Image == nil {
		// Answered without an image payload: a failed attempt, not a crash.
		g.logger.Warn("image model returned no payload", zap.String("model", res.Model))
		return nil, fmt.Errorf("image model %s returned no image", res.Model)
	}
	return res.Image, nil
}

// Fix sends the rejected image back with the review issues. The model edits
// labels and text without redrawing the structure.
func (g *imageGen) Fix(ctx context.Context, spec *diagram.RenderSpec, image []byte, issues []string) ([]byte, error) {
	prompt := fmt.Sprintf(
		"Correct this diagram image. Keep the structure and layout exactly as they are; fix only these issues:\n- %s\n\nThe diagram depicts:\n%s\n\n%s",
		strings.Join(issues, "\n- "), spec.Description, imageStyleRules)

	res, err := g.provider.GenerateImage(ctx, llm.ImageRequest{
		Prompt:      prompt,
		SourceImage: &llm.ImagePart{MediaType: "image/png", Data: image},
	})
	if err != nil {
		return nil, fmt.Errorf("image fix: %w", err)
	}
	if res.Image == nil {
		return nil, fmt.Errorf("image model %s returned no corrected image", res.Model)
	}
	return res.Image, nil
}

package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiImageProvider implements ImageProvider using a Gemini image model.
// The same call shape serves both modes: generate (prompt only) and fix
// (prompt plus the prior image as inline data).
type GeminiImageProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiImageProvider creates an image provider on the Gemini API.
func NewGeminiImageProvider(ctx context.Context, cfg GeminiConfig, img ImageConfig) (*GeminiImageProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required for image generation")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	model := img.Model
	if model == "" {
		model = "gemini-2.5-flash-image"
	}

	return &GeminiImageProvider{client: client, model: model}, nil
}

func (p *GeminiImageProvider) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	parts := make([]*genai.Part, 0, 2)
	if req.SourceImage != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: req.SourceImage.MediaType,
				Data:     req.SourceImage.Data,
			},
		})
	}
	parts = append(parts, &genai.Part{Text: req.Prompt})

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	res := &ImageResult{Model: p.model}
	if result.UsageMetadata != nil {
		res.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}

	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				res.Image = part.InlineData.Data
				res.MediaType = part.InlineData.MIMEType
				return res, nil
			}
		}
	}

	// The model answered with text only. A nil Image signals the caller to
	// treat the attempt as failed without crashing the pipeline.
	return res, nil
}

func (p *GeminiImageProvider) ModelID() string {
	return p.model
}

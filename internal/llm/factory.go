package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vidyaai/diagramgen/internal/store"
)

// NewProvider creates the text provider for a pipeline role. The configured
// vendor default model is used unless the role carries an override, so
// classification can ride a cheaper tier than review.
//
// Wrapping order: caller → retry → breaker → logging → base. The breaker
// sits inside the retry loop so a retry burst against a dead key opens it
// once instead of once per caller.
func NewProvider(ctx context.Context, cfg Config, role ModelRole, repo store.EventRepo, logger *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	model := cfg.Roles.Model(role)

	switch cfg.Provider {
	case "anthropic":
		ac := cfg.Anthropic
		if model != "" {
			ac.Model = model
		}
		base, err = NewAnthropicProvider(ac)
	case "openai":
		oc := cfg.OpenAI
		if model != "" {
			oc.Model = model
		}
		base, err = NewOpenAIProvider(oc)
	case "gemini":
		gc := cfg.Gemini
		if model != "" {
			gc.Model = model
		}
		base, err = NewGeminiProvider(ctx, gc)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider for %s: %w", cfg.Provider, role, err)
	}

	logged := WithLogging(base, cfg.Provider, repo, logger)
	broken := WithBreaker(logged, cfg.Breaker)
	retried := WithRetry(broken, cfg.Retry)

	return retried, nil
}

// NewImageProvider creates the image-generation provider. Retries are left
// to the pipeline's attempt budget; only event logging wraps the base.
func NewImageProvider(ctx context.Context, cfg Config, repo store.EventRepo, logger *zap.Logger) (ImageProvider, error) {
	switch cfg.Image.Provider {
	case "", "gemini":
		base, err := NewGeminiImageProvider(ctx, cfg.Gemini, cfg.Image)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini image provider: %w", err)
		}
		return WithImageLogging(base, "gemini", repo, logger), nil
	case "mock":
		return NewMockImageProvider(), nil
	default:
		return nil, fmt.Errorf("unknown image provider: %q", cfg.Image.Provider)
	}
}

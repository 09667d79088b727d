package llm

import (
	"fmt"
	"os"
	"time"
)

// ModelRole identifies which pipeline role a provider serves. The factory
// picks the configured model tier per role: classification rides the cheap
// tier, review needs a vision-capable model.
type ModelRole string

const (
	ModelRoleClassify ModelRole = "classify"
	ModelRoleGenerate ModelRole = "generate"
	ModelRoleReview   ModelRole = "review"
)

// Config holds all model-service configuration.
type Config struct {
	// Provider selects which vendor backs the text roles.
	// Values: "anthropic", "openai", "gemini", "mock"
	Provider string

	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Roles     RolesConfig
	Image     ImageConfig
	Retry     RetryConfig
	Breaker   BreakerConfig

	// Timeout is the maximum duration for a single model request
	// (including retries). Default: 60s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for OpenRouter or compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// RolesConfig overrides the provider's default model per pipeline role.
// Empty fields fall back to the provider default.
type RolesConfig struct {
	Classify string
	Generate string
	Review   string
}

// Model returns the model override for a role, empty when unset.
func (r RolesConfig) Model(role ModelRole) string {
	switch role {
	case ModelRoleClassify:
		return r.Classify
	case ModelRoleGenerate:
		return r.Generate
	case ModelRoleReview:
		return r.Review
	}
	return ""
}

// ImageConfig selects the image-generation model. Image generation rides
// the Gemini key regardless of which vendor backs the text roles.
type ImageConfig struct {
	// Provider is "gemini" or "mock".
	Provider string
	Model    string // Default: "gemini-2.5-flash-image"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// BreakerConfig configures the per-adapter circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the consecutive auth/unavailable failure count
	// that opens the breaker.
	FailureThreshold int

	// Cooldown is how long an open breaker waits before allowing a
	// half-open probe request.
	Cooldown time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Image: ImageConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash-image",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 3,
			Cooldown:         30 * time.Second,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("DIAGRAMGEN_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if k := os.Getenv("DIAGRAMGEN_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("DIAGRAMGEN_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("DIAGRAMGEN_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("DIAGRAMGEN_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("DIAGRAMGEN_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := os.Getenv("DIAGRAMGEN_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("DIAGRAMGEN_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	if m := os.Getenv("DIAGRAMGEN_CLASSIFY_MODEL"); m != "" {
		cfg.Roles.Classify = m
	}
	if m := os.Getenv("DIAGRAMGEN_GENERATE_MODEL"); m != "" {
		cfg.Roles.Generate = m
	}
	if m := os.Getenv("DIAGRAMGEN_REVIEW_MODEL"); m != "" {
		cfg.Roles.Review = m
	}
	if m := os.Getenv("DIAGRAMGEN_IMAGE_MODEL"); m != "" {
		cfg.Image.Model = m
	}

	return cfg
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic) and returns a Config for the first
// provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("DIAGRAMGEN_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("DIAGRAMGEN_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("DIAGRAMGEN_GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

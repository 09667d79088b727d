package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for text-model interaction. One Provider
// instance serves one pipeline role (classification, source generation, or
// vision review); the factory decides which vendor backs each role.
type Provider interface {
	// Generate sends a prompt to the model and returns the response.
	// The request's Schema field, when set, instructs the provider to return
	// JSON conforming to that schema; the response Content is the validated
	// JSON. Messages may carry image parts for vision-capable roles.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt. Sets the model's role and constraints.
	System string

	// Messages is the conversation history. Single-turn generation — one
	// user message — is the common case in this pipeline.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When set, the provider uses its native structured output mechanism.
	// When nil, the response Content is the raw text as json.RawMessage.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string

	// Images attaches image parts ahead of the text content. Only meaningful
	// on user messages sent to a vision-capable model.
	Images []ImagePart
}

// ImagePart is one inline image attached to a message.
type ImagePart struct {
	// MediaType is the MIME type, e.g. "image/png".
	MediaType string

	// Data is the raw image bytes. Adapters base64-encode as their wire
	// format requires.
	Data []byte
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema (used as tool name for Anthropic,
	// schema name for OpenAI). Kebab-case, e.g. "diagram-classification".
	Name string

	// Description is a human-readable description of what this schema
	// represents. Sent to the model to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the generated output. When a Schema was provided in the
	// request, this is the validated JSON object. When no Schema was
	// provided, this is the raw text response.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// ImageProvider is the abstraction for image-model interaction: prompt in,
// raster bytes out. Serves the generative-image render backend.
type ImageProvider interface {
	// GenerateImage produces an image for the request. A nil Image in the
	// result means the model answered without an image payload; that is not
	// an error — callers treat the attempt as failed and move on.
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)

	// ModelID returns the image model identifier.
	ModelID() string
}

// ImageRequest describes an image to generate or correct.
type ImageRequest struct {
	// Prompt is the full generation or correction instruction text.
	Prompt string

	// SourceImage, when non-nil, switches the model into fix mode: it is
	// sent alongside the prompt and the model edits rather than re-imagines.
	SourceImage *ImagePart
}

// ImageResult holds the image model's output.
type ImageResult struct {
	// Image is the produced raster, nil when the model returned no image.
	Image []byte

	// MediaType is the MIME type of Image, e.g. "image/png".
	MediaType string

	Usage Usage
	Model string
}

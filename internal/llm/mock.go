package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned responses in FIFO order and records all requests.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockImageResult is a canned result for the MockImageProvider.
type MockImageResult struct {
	Image     []byte
	MediaType string
	Err       error
}

// MockImageProvider is a deterministic ImageProvider for testing.
// It returns canned results in FIFO order and records all requests.
type MockImageProvider struct {
	mu      sync.Mutex
	results []MockImageResult
	Calls   []ImageRequest
}

// NewMockImageProvider creates a MockImageProvider with canned results.
func NewMockImageProvider(results ...MockImageResult) *MockImageProvider {
	return &MockImageProvider{results: results}
}

// GenerateImage returns the next canned result or ErrProviderUnavailable if
// the queue is empty. An empty Image in the canned result models the
// no-payload case: the call succeeds but Image is nil.
func (m *MockImageProvider) GenerateImage(_ context.Context, req ImageRequest) (*ImageResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.results) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	res := m.results[0]
	m.results = m.results[1:]

	if res.Err != nil {
		return nil, res.Err
	}

	mediaType := res.MediaType
	if mediaType == "" && res.Image != nil {
		mediaType = "image/png"
	}
	return &ImageResult{
		Image:     res.Image,
		MediaType: mediaType,
		Model:     "mock-image",
	}, nil
}

// ModelID returns "mock-image".
func (m *MockImageProvider) ModelID() string {
	return "mock-image"
}

// CallCount returns the number of GenerateImage calls made.
func (m *MockImageProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

package llm

import (
	"context"
	"sync"
)

// MockClient is an offline backend used when no API key is configured and
// throughout the tests. Responses are scripted; when the script runs out it
// answers FINISH so agents wind down instead of looping.
type MockClient struct {
	model     string
	mu        sync.Mutex
	responses []string
	calls     []Request
}

// NewMockClient creates a mock client
func NewMockClient(model string) *MockClient {
	if model == "" {
		model = "mock"
	}
	return &MockClient{model: model}
}

// Script appends canned responses returned in order by Generate
func (c *MockClient) Script(responses ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, responses...)
}

// Calls returns every request seen so far
func (c *MockClient) Calls() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Request, len(c.calls))
	copy(out, c.calls)
	return out
}

// Generate returns the next scripted response
func (c *MockClient) Generate(ctx context.Context, req Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, req)

	content := `FINISH PROMPT="mock response exhausted"`
	if len(c.responses) > 0 {
		content = c.responses[0]
		c.responses = c.responses[1:]
	}
	return &Response{Content: content, Model: c.model}, nil
}

// GetModel returns the model name
func (c *MockClient) GetModel() string { return c.model }

// GetProvider returns the provider name
func (c *MockClient) GetProvider() string { return "mock" }

// IsAvailable always reports true for the mock
func (c *MockClient) IsAvailable(ctx context.Context) bool { return true }

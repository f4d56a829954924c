package llm

import "context"

// Purpose defines which agent role an LLM serves
type Purpose string

const (
	PurposeMaster  Purpose = "master"
	PurposeManager Purpose = "manager"
	PurposeCoder   Purpose = "coder"
	PurposeTester  Purpose = "tester"
)

// Message represents a single message in a conversation
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// Request represents a request to an LLM
type Request struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// Response represents a response from an LLM
type Response struct {
	Content    string         `json:"content"`
	Model      string         `json:"model"`
	TokensUsed int            `json:"tokens_used,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Client defines the interface for interacting with LLM providers. The core
// only depends on this contract; callers treat Generate as synchronous.
type Client interface {
	// Generate sends a request to the LLM and returns a response
	Generate(ctx context.Context, req Request) (*Response, error)

	// GetModel returns the model name this client is using
	GetModel() string

	// GetProvider returns the provider name (e.g., "openai", "console")
	GetProvider() string

	// IsAvailable checks if the LLM is available and responding
	IsAvailable(ctx context.Context) bool
}

// Config represents configuration for a specific LLM instance
type Config struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	BaseURL     string  `yaml:"base_url,omitempty"`
	APIKey      string  `yaml:"api_key,omitempty"`
}

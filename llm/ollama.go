package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OllamaClient implements the Client interface for a local Ollama server
type OllamaClient struct {
	httpClient  *http.Client
	model       string
	temperature float64
	baseURL     string
}

// NewOllamaClient creates a new Ollama client
func NewOllamaClient(config Config) (*OllamaClient, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaClient{
		httpClient:  &http.Client{Timeout: 10 * time.Minute},
		model:       config.Model,
		temperature: config.Temperature,
		baseURL:     baseURL,
	}, nil
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message   Message `json:"message"`
	EvalCount int     `json:"eval_count"`
	Error     string  `json:"error,omitempty"`
}

// Generate sends a request to Ollama and returns the response
func (c *OllamaClient) Generate(ctx context.Context, req Request) (*Response, error) {
	options := map[string]any{}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	body, err := json.Marshal(ollamaChatRequest{
		Model:    c.model,
		Messages: req.Messages,
		Options:  options,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed ollamaChatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", parsed.Error)
	}

	return &Response{
		Content:    parsed.Message.Content,
		Model:      c.model,
		TokensUsed: parsed.EvalCount,
	}, nil
}

// GetModel returns the model name
func (c *OllamaClient) GetModel() string { return c.model }

// GetProvider returns the provider name
func (c *OllamaClient) GetProvider() string { return "ollama" }

// IsAvailable checks if Ollama is responding
func (c *OllamaClient) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

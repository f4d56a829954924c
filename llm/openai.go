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

// OpenAIClient implements Client against any OpenAI-compatible chat
// completions endpoint
type OpenAIClient struct {
	httpClient  *http.Client
	model       string
	temperature float64
	baseURL     string
	apiKey      string
}

// NewOpenAIClient creates a client for an OpenAI-compatible API
func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		httpClient:  &http.Client{Timeout: 5 * time.Minute},
		model:       config.Model,
		temperature: config.Temperature,
		baseURL:     baseURL,
		apiKey:      config.APIKey,
	}, nil
}

type openAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate sends a chat completion request and returns the first choice
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(openAIRequest{
		Model:       c.model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model %s", c.model)
	}

	return &Response{
		Content:    parsed.Choices[0].Message.Content,
		Model:      c.model,
		TokensUsed: parsed.Usage.TotalTokens,
	}, nil
}

// GetModel returns the model name
func (c *OpenAIClient) GetModel() string { return c.model }

// GetProvider returns the provider name
func (c *OpenAIClient) GetProvider() string { return "openai" }

// IsAvailable checks if the endpoint is reachable
func (c *OpenAIClient) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

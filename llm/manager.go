package llm

import (
	"context"
	"fmt"
	"sync"
)

// Manager routes generation requests to the client registered for each
// agent role, falling back to the manager client when a role has no model
// of its own.
type Manager struct {
	clients map[Purpose]Client
	configs map[Purpose]Config
	mu      sync.RWMutex
}

// NewManager creates a new LLM manager
func NewManager() *Manager {
	return &Manager{
		clients: make(map[Purpose]Client),
		configs: make(map[Purpose]Config),
	}
}

// RegisterLLM registers an LLM for a specific purpose. A provider that
// needs an API key but has none configured degrades to the mock client so
// the system stays runnable offline.
func (m *Manager) RegisterLLM(purpose Purpose, config Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.configs[purpose] = config

	var client Client
	var err error

	switch config.Provider {
	case "openai":
		if config.APIKey == "" {
			client = NewMockClient(config.Model)
		} else {
			client, err = NewOpenAIClient(config)
		}
	case "ollama":
		client, err = NewOllamaClient(config)
	case "console":
		client = NewConsoleClient(config.Model)
	case "mock":
		client = NewMockClient(config.Model)
	default:
		return fmt.Errorf("unsupported provider: %s", config.Provider)
	}

	if err != nil {
		return fmt.Errorf("failed to create %s client: %w", config.Provider, err)
	}

	m.clients[purpose] = client
	return nil
}

// RegisterClient installs an already-built client (used by tests)
func (m *Manager) RegisterClient(purpose Purpose, client Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[purpose] = client
}

// GetClient returns the client for a purpose, falling back to the manager
// client when the purpose has no dedicated model
func (m *Manager) GetClient(purpose Purpose) (Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if client, ok := m.clients[purpose]; ok {
		return client, nil
	}
	if purpose != PurposeManager {
		if fallback, ok := m.clients[PurposeManager]; ok {
			return fallback, nil
		}
	}
	return nil, fmt.Errorf("no LLM available for purpose: %s", purpose)
}

// Generate sends a request to the appropriate LLM based on purpose
func (m *Manager) Generate(ctx context.Context, purpose Purpose, req Request) (*Response, error) {
	client, err := m.GetClient(purpose)
	if err != nil {
		return nil, err
	}

	cfg, _ := m.config(purpose)
	if req.Temperature == 0 {
		req.Temperature = cfg.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = cfg.MaxTokens
	}

	return client.Generate(ctx, req)
}

// GetConfig returns the configuration for a specific purpose
func (m *Manager) GetConfig(purpose Purpose) (Config, bool) {
	return m.config(purpose)
}

func (m *Manager) config(purpose Purpose) (Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[purpose]
	return cfg, ok
}

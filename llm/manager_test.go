package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRoutesByPurpose(t *testing.T) {
	m := NewManager()
	managerClient := NewMockClient("manager-model")
	coderClient := NewMockClient("coder-model")
	m.RegisterClient(PurposeManager, managerClient)
	m.RegisterClient(PurposeCoder, coderClient)

	got, err := m.GetClient(PurposeCoder)
	require.NoError(t, err)
	assert.Equal(t, "coder-model", got.GetModel())
}

func TestManagerFallsBackToManagerClient(t *testing.T) {
	m := NewManager()
	m.RegisterClient(PurposeManager, NewMockClient("fallback"))

	got, err := m.GetClient(PurposeTester)
	require.NoError(t, err)
	assert.Equal(t, "fallback", got.GetModel())

	empty := NewManager()
	_, err = empty.GetClient(PurposeTester)
	assert.Error(t, err)
}

func TestRegisterLLMUnsupportedProvider(t *testing.T) {
	m := NewManager()
	err := m.RegisterLLM(PurposeManager, Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestRegisterLLMOpenAIWithoutKeyDegradesToMock(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterLLM(PurposeManager, Config{Provider: "openai", Model: "gpt-4o"}))

	client, err := m.GetClient(PurposeManager)
	require.NoError(t, err)
	assert.Equal(t, "mock", client.GetProvider())
}

func TestGenerateAppliesConfigDefaults(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterLLM(PurposeCoder, Config{
		Provider:    "mock",
		Model:       "mock",
		Temperature: 0.4,
		MaxTokens:   2048,
	}))

	client, err := m.GetClient(PurposeCoder)
	require.NoError(t, err)
	mock := client.(*MockClient)
	mock.Script("CHANGE CONTENT=\"x\"")

	resp, err := m.Generate(context.Background(), PurposeCoder, Request{
		Messages: []Message{{Role: "user", Content: "go"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "CHANGE CONTENT=\"x\"", resp.Content)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 0.4, calls[0].Temperature)
	assert.Equal(t, 2048, calls[0].MaxTokens)
}

func TestMockClientExhaustedScriptFinishes(t *testing.T) {
	c := NewMockClient("")
	c.Script("READ FILE=\"a.py\"")

	resp, err := c.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "READ FILE=\"a.py\"", resp.Content)

	resp, err = c.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Contains(t, resp.Content, "FINISH")
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.NotEmpty(t, cfg.Workspace.Path)
	assert.Equal(t, DefaultAllowedCommands, cfg.Shell.AllowedCommands)
	assert.Equal(t, 300, cfg.Shell.RunTimeoutSeconds)
	assert.Equal(t, 120, cfg.Shell.EphemeralRunTimeoutSeconds)
	assert.Equal(t, "info", cfg.LogLevel)

	// offline default: a mock manager model serves every purpose
	require.Contains(t, cfg.LLMs, "manager")
	assert.Equal(t, "mock", cfg.LLMs["manager"].Provider)
}

func TestLoadAppliesFileValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hive.yaml")
	content := `
workspace:
  path: ` + dir + `
llms:
  manager:
    provider: ollama
    model: qwen2.5-coder:7b
    temperature: 0.2
  coder:
    provider: mock
    model: mock
shell:
  allowed_commands:
    - "python -m pytest"
  run_timeout_seconds: 60
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Workspace.Path)
	assert.Equal(t, "ollama", cfg.LLMs["manager"].Provider)
	assert.Equal(t, 0.2, cfg.LLMs["manager"].Temperature)
	assert.Equal(t, []string{"python -m pytest"}, cfg.Shell.AllowedCommands)
	assert.Equal(t, 60, cfg.Shell.RunTimeoutSeconds)
	// unset values still default
	assert.Equal(t, 120, cfg.Shell.EphemeralRunTimeoutSeconds)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestExpandHomePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, expandHomePath("~"))
	assert.Equal(t, filepath.Join(home, "projects"), expandHomePath("~/projects"))
	assert.Equal(t, "/absolute", expandHomePath("/absolute"))
	assert.Equal(t, "~user/x", expandHomePath("~user/x"))
}

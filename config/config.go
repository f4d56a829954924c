package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"hive/llm"
)

var globalConfig *Config

// DefaultAllowedCommands is the shipped RUN allow-list. Deployments narrow
// or extend it in config.
var DefaultAllowedCommands = []string{
	"python -m pytest",
	"python -m unittest",
	"npm test",
	"npm install",
	"ls",
	"dir",
	"cat",
	"git status",
	"git log",
	"flake8",
	"mypy",
	"black --check",
	"tsc",
	"mocha",
}

// Load reads the configuration file and installs it as the global config
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/hive.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	globalConfig = &cfg
	return &cfg, nil
}

// Get returns the global configuration, falling back to defaults when Load
// was never called
func Get() *Config {
	if globalConfig == nil {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}
	return globalConfig
}

// Default returns a fresh configuration with all defaults applied. Tests
// use it to avoid touching the global.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Workspace.Path == "" {
		cfg.Workspace.Path = getDefaultWorkspacePath()
	} else {
		cfg.Workspace.Path = expandHomePath(cfg.Workspace.Path)
	}

	if cfg.LLMs == nil {
		cfg.LLMs = map[string]llm.Config{
			string(llm.PurposeManager): {Provider: "mock", Model: "mock"},
		}
	}

	if len(cfg.Shell.AllowedCommands) == 0 {
		cfg.Shell.AllowedCommands = append([]string(nil), DefaultAllowedCommands...)
	}
	if cfg.Shell.RunTimeoutSeconds == 0 {
		cfg.Shell.RunTimeoutSeconds = 300
	}
	if cfg.Shell.EphemeralRunTimeoutSeconds == 0 {
		cfg.Shell.EphemeralRunTimeoutSeconds = 120
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// getDefaultWorkspacePath returns the default project root.
// Priority: HIVE_WORKSPACE env var > current working directory.
func getDefaultWorkspacePath() string {
	if workspacePath := os.Getenv("HIVE_WORKSPACE"); workspacePath != "" {
		return expandHomePath(workspacePath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if len(path) == 0 {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}
	}

	return path
}

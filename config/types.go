package config

import "hive/llm"

// Config is the process-wide runtime configuration. It is loaded once at
// startup and never mutated afterwards.
type Config struct {
	Workspace WorkspaceConfig        `yaml:"workspace"`
	LLMs      map[string]llm.Config  `yaml:"llms"`
	Shell     ShellConfig            `yaml:"shell"`
	Ledger    LedgerConfig           `yaml:"ledger"`
	Web       WebConfig              `yaml:"web"`
	LogLevel  string                 `yaml:"log_level"`
}

// WorkspaceConfig anchors the project root. All agent paths resolve against
// it; operations outside are rejected.
type WorkspaceConfig struct {
	Path string `yaml:"path"`
}

// ShellConfig governs RUN execution
type ShellConfig struct {
	// AllowedCommands is the closed list of permitted command prefixes.
	// A RUN whose command does not start with one of these is rejected
	// without spawning a process.
	AllowedCommands []string `yaml:"allowed_commands"`

	// RunTimeoutSeconds applies to persistent agents (manager, coder)
	RunTimeoutSeconds int `yaml:"run_timeout_seconds"`

	// EphemeralRunTimeoutSeconds applies to tester agents
	EphemeralRunTimeoutSeconds int `yaml:"ephemeral_run_timeout_seconds"`
}

// LedgerConfig locates the SQLite run ledger. An empty path disables it.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// WebConfig configures the websocket event stream for front-end
// collaborators. An empty address disables it.
type WebConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

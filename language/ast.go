package language

// Directive is one parsed DSL instruction. Each language produces a subset
// of these variants; the interpreter consumes a directive exactly once.
type Directive interface {
	// Keyword returns the directive keyword as written in the source line
	Keyword() string
}

// TargetKind distinguishes file and folder targets in manager directives
type TargetKind string

const (
	TargetFile   TargetKind = "file"
	TargetFolder TargetKind = "folder"
)

// TargetRef names a file or folder relative to the issuing agent's scope
type TargetRef struct {
	Kind TargetKind
	Name string
}

// Read asks for a file snapshot to be added to the agent's memory
type Read struct {
	Target string
}

func (Read) Keyword() string { return "READ" }

// ReadTarget is the manager/master form of READ with an explicit kind.
// For folders the folder's README is read instead of the folder itself.
type ReadTarget struct {
	Target TargetRef
}

func (ReadTarget) Keyword() string { return "READ" }

// Run executes a shell command against the allow-list
type Run struct {
	Command string
}

func (Run) Keyword() string { return "RUN" }

// Change replaces the agent's own file with new content
type Change struct {
	Content string
}

func (Change) Keyword() string { return "CHANGE" }

// ReplaceItem is a single from→to substitution
type ReplaceItem struct {
	From string
	To   string
}

// Replace applies one or more exact-match substitutions to the agent's own
// file. All items must match exactly once before any byte is written.
type Replace struct {
	Items []ReplaceItem
}

func (Replace) Keyword() string { return "REPLACE" }

// Insert places To immediately after From in the agent's own file
type Insert struct {
	From string
	To   string
}

func (Insert) Keyword() string { return "INSERT" }

// SpawnItem names one ephemeral agent to start
type SpawnItem struct {
	EphemeralType string
	Prompt        string
}

// Spawn starts one or more ephemeral agents
type Spawn struct {
	Items []SpawnItem
}

func (Spawn) Keyword() string { return "SPAWN" }

// DelegateItem hands a task to one existing child
type DelegateItem struct {
	Target TargetRef
	Prompt string
}

// Delegate hands tasks to one or more children of a manager
type Delegate struct {
	Items []DelegateItem
}

func (Delegate) Keyword() string { return "DELEGATE" }

// Create makes a new file or folder inside the manager's scope and
// instantiates the matching child agent
type Create struct {
	Target TargetRef
}

func (Create) Keyword() string { return "CREATE" }

// Delete removes an inactive child and its file or folder from disk
type Delete struct {
	Target TargetRef
}

func (Delete) Keyword() string { return "DELETE" }

// UpdateReadme rewrites the manager's own README
type UpdateReadme struct {
	Content string
}

func (UpdateReadme) Keyword() string { return "UPDATE_README" }

// Wait yields control until an active child or ephemeral agent reports
type Wait struct{}

func (Wait) Keyword() string { return "WAIT" }

// Finish deactivates the agent and propagates its result to the parent
type Finish struct {
	Prompt string
}

func (Finish) Keyword() string { return "FINISH" }

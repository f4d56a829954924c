package agent

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"hive/llm"
)

// Kind identifies the concrete agent variant
type Kind string

const (
	KindMaster  Kind = "master"
	KindManager Kind = "manager"
	KindCoder   Kind = "coder"
	KindTester  Kind = "tester"
)

// Agent is the capability surface shared by all agent variants. Every agent
// is bound to a path inside the project tree and processes prompts strictly
// one LLM call at a time.
type Agent interface {
	Name() string
	Path() string
	Kind() Kind
	ParentPath() string
	PersonalFile() string
	Purpose() llm.Purpose

	IsActive() bool
	ActiveTask() *TaskMessage
	Activate(task *TaskMessage) error
	Deactivate() error

	// Busy counts active children plus active ephemeral agents
	Busy() int

	Enqueue(prompt string) bool
	QueuedPrompts() []string
	BeginCall() (string, bool)
	EndCall() bool

	Remember(path, content string)
	Recall(path string) (string, bool)
	MemoryDump() string

	AddEphemeral(name string)
	RemoveEphemeral(name string) bool
	EphemeralCount() int
	EphemeralNames() []string
}

// ActivationError reports a task hand-off that violated agent state. It is
// the only error kind that propagates to the parent instead of being
// recovered locally.
type ActivationError struct {
	Agent  string
	Reason string
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("cannot activate %s: %s", e.Agent, e.Reason)
}

// Base carries the state common to all agent variants. Concrete variants
// embed it; all mutation goes through the embedded mutex so cross-agent
// hand-offs are safe from any goroutine.
type Base struct {
	mu sync.Mutex

	name         string
	path         string // scope, relative to project root; "" for the master
	parentPath   string
	kind         Kind
	personalFile string
	purpose      llm.Purpose

	active     bool
	activeTask *TaskMessage
	stall      bool
	queue      []string

	memory   map[string]string
	memOrder []string

	ephemerals map[string]struct{}
}

func newBase(kind Kind, scopePath, parentPath, personalFile string, purpose llm.Purpose) Base {
	name := path.Base(scopePath)
	if scopePath == "" {
		name = "project"
	}
	return Base{
		name:         name,
		path:         scopePath,
		parentPath:   parentPath,
		kind:         kind,
		personalFile: personalFile,
		purpose:      purpose,
		memory:       make(map[string]string),
		ephemerals:   make(map[string]struct{}),
	}
}

func (a *Base) Name() string         { return a.name }
func (a *Base) Path() string         { return a.path }
func (a *Base) Kind() Kind           { return a.kind }
func (a *Base) ParentPath() string   { return a.parentPath }
func (a *Base) PersonalFile() string { return a.personalFile }
func (a *Base) Purpose() llm.Purpose { return a.purpose }

// IsActive reports whether the agent holds an active task
func (a *Base) IsActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

// ActiveTask returns the task currently being worked, or nil
func (a *Base) ActiveTask() *TaskMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeTask
}

// Activate transitions Idle → Active. Activating an already-active agent is
// a state violation that the caller routes to the parent.
func (a *Base) Activate(task *TaskMessage) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active {
		return &ActivationError{Agent: a.name, Reason: "agent already has an active task"}
	}
	a.active = true
	a.activeTask = task
	return nil
}

// Deactivate transitions Active → Idle. It refuses while ephemeral agents
// are still running; variants with children add their own guard via Busy.
func (a *Base) Deactivate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.ephemerals) > 0 {
		return fmt.Errorf("cannot deactivate %s: %d ephemeral agents still active", a.name, len(a.ephemerals))
	}
	a.active = false
	a.activeTask = nil
	return nil
}

// Busy counts active ephemeral agents; Manager overrides to add children
func (a *Base) Busy() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ephemerals)
}

// Enqueue appends a follow-up prompt. The queue deduplicates on insert: a
// prompt already present keeps its original position and is not re-added.
// Returns whether the prompt was added.
func (a *Base) Enqueue(prompt string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, p := range a.queue {
		if p == prompt {
			return false
		}
	}
	a.queue = append(a.queue, prompt)
	return true
}

// QueuedPrompts returns a copy of the pending prompt queue in FIFO order
func (a *Base) QueuedPrompts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.queue))
	copy(out, a.queue)
	return out
}

// BeginCall acquires the single-flight guard. If another LLM call is in
// flight or nothing is queued it returns false; otherwise it sets the stall
// flag, drains the queue and returns the consolidated prompt.
func (a *Base) BeginCall() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stall || len(a.queue) == 0 {
		return "", false
	}
	a.stall = true
	consolidated := strings.Join(a.queue, "\n\n")
	a.queue = a.queue[:0]
	return consolidated, true
}

// EndCall releases the single-flight guard and reports whether another call
// should be scheduled (prompts queued while the agent is still active).
func (a *Base) EndCall() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stall = false
	return a.active && len(a.queue) > 0
}

// Stalled reports whether an LLM call is in flight
func (a *Base) Stalled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stall
}

// Remember snapshots file content into the agent's read memory. A later
// snapshot of the same path replaces the old one wholesale.
func (a *Base) Remember(p, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, seen := a.memory[p]; !seen {
		a.memOrder = append(a.memOrder, p)
	}
	a.memory[p] = content
}

// Recall returns the remembered snapshot for a path
func (a *Base) Recall(p string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	content, ok := a.memory[p]
	return content, ok
}

// MemoryDump renders the read memory for inclusion in the LLM prompt, in
// the order files were first read
func (a *Base) MemoryDump() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.memOrder) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Files in memory:\n")
	for _, p := range a.memOrder {
		fmt.Fprintf(&b, "--- %s ---\n%s\n", p, a.memory[p])
	}
	return b.String()
}

// AddEphemeral records a running ephemeral agent by name
func (a *Base) AddEphemeral(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ephemerals[name] = struct{}{}
}

// RemoveEphemeral clears a finished ephemeral agent; reports whether it was
// known
func (a *Base) RemoveEphemeral(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.ephemerals[name]; !ok {
		return false
	}
	delete(a.ephemerals, name)
	return true
}

// EphemeralCount returns the number of running ephemeral agents
func (a *Base) EphemeralCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.ephemerals)
}

// EphemeralNames lists running ephemeral agents, sorted for stable output
func (a *Base) EphemeralNames() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.ephemerals))
	for n := range a.ephemerals {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

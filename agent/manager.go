package agent

import (
	"fmt"
	"path"
	"sort"

	"hive/llm"
)

// Manager owns a directory and the child agents created inside it. The
// master is a Manager bound to the project root with the master purpose.
type Manager struct {
	Base

	children       map[string]Agent  // child name → agent (owned)
	activeChildren map[string]string // child path → task ID
}

// NewManager creates a manager agent scoped to a directory. scopePath and
// parentPath are relative to the project root.
func NewManager(scopePath, parentPath string) *Manager {
	personal := path.Join(scopePath, path.Base(scopePath)+"_README.md")
	return &Manager{
		Base:           newBase(KindManager, scopePath, parentPath, personal, llm.PurposeManager),
		children:       make(map[string]Agent),
		activeChildren: make(map[string]string),
	}
}

// NewMaster creates the root manager. Its scope is the project root itself
// and it has no parent; its FINISH stores the final result instead of
// emitting a ResultMessage.
func NewMaster() *Manager {
	m := &Manager{
		Base:           newBase(KindMaster, "", "", "project_README.md", llm.PurposeMaster),
		children:       make(map[string]Agent),
		activeChildren: make(map[string]string),
	}
	return m
}

// IsMaster reports whether this manager is the root agent
func (m *Manager) IsMaster() bool { return m.kind == KindMaster }

// AddChild records a newly created child agent
func (m *Manager) AddChild(child Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := child.Name()
	if _, exists := m.children[name]; exists {
		return fmt.Errorf("child %q already exists under %s", name, m.name)
	}
	m.children[name] = child
	return nil
}

// RemoveChild forgets a child by name; reports whether it was known
func (m *Manager) RemoveChild(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.children[name]; !ok {
		return false
	}
	delete(m.children, name)
	return true
}

// Child looks up a child agent by name
func (m *Manager) Child(name string) (Agent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.children[name]
	return c, ok
}

// ChildNames lists children sorted by name
func (m *Manager) ChildNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.children))
	for n := range m.children {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RecordDelegation marks a child as working the given task
func (m *Manager) RecordDelegation(childPath, taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeChildren[childPath] = taskID
}

// ChildReported clears a child's pending task on result arrival and returns
// whether the child was being waited on
func (m *Manager) ChildReported(childPath string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activeChildren[childPath]; !ok {
		return false
	}
	delete(m.activeChildren, childPath)
	return true
}

// ActiveChildCount returns the number of children with pending tasks
func (m *Manager) ActiveChildCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.activeChildren)
}

// Busy counts children with pending tasks plus running ephemeral agents
func (m *Manager) Busy() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.activeChildren) + len(m.ephemerals)
}

// Deactivate refuses while any child or ephemeral agent is still active
func (m *Manager) Deactivate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n := len(m.activeChildren) + len(m.ephemerals); n > 0 {
		return fmt.Errorf("cannot deactivate %s: %d active children or ephemeral agents", m.name, n)
	}
	m.active = false
	m.activeTask = nil
	return nil
}

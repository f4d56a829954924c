package agent

import (
	"fmt"
	"sync"
)

// Registry stores every live agent keyed by its path. Parents own their
// children; a child only carries its parent's path, resolved here, so the
// back-reference never keeps a destroyed parent alive.
type Registry struct {
	agents map[string]Agent
	mu     sync.RWMutex
}

// NewRegistry creates an empty agent registry
func NewRegistry() *Registry {
	return &Registry{
		agents: make(map[string]Agent),
	}
}

// Register adds an agent under its path
func (r *Registry) Register(a Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := a.Path()
	if _, exists := r.agents[p]; exists {
		return fmt.Errorf("agent at %q already registered", p)
	}
	r.agents[p] = a
	return nil
}

// Get retrieves an agent by path
func (r *Registry) Get(path string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.agents[path]
	if !exists {
		return nil, fmt.Errorf("no agent at %q", path)
	}
	return a, nil
}

// Parent resolves an agent's weak parent reference
func (r *Registry) Parent(a Agent) (Agent, error) {
	if a.Kind() == KindMaster {
		return nil, fmt.Errorf("master agent has no parent")
	}
	return r.Get(a.ParentPath())
}

// Remove drops an agent by path; reports whether it was registered
func (r *Registry) Remove(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[path]; !exists {
		return false
	}
	delete(r.agents, path)
	return true
}

// RemoveSubtree drops an agent and every agent scoped beneath it. Destroying
// a parent destroys its children.
func (r *Registry) RemoveSubtree(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for p := range r.agents {
		if p == path || isBeneath(p, path) {
			delete(r.agents, p)
			removed++
		}
	}
	return removed
}

// List returns all registered agents
func (r *Registry) List() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agents := make([]Agent, 0, len(r.agents))
	for _, a := range r.agents {
		agents = append(agents, a)
	}
	return agents
}

func isBeneath(p, ancestor string) bool {
	if ancestor == "" {
		return p != ""
	}
	return len(p) > len(ancestor)+1 && p[:len(ancestor)+1] == ancestor+"/"
}

// Package events carries the core's outbound event stream. The orchestrator
// publishes agent lifecycle and filesystem events; collaborator front-ends
// subscribe and render them.
package events

import (
	"sync"
	"time"
)

// Type enumerates the event kinds the core emits
type Type string

const (
	AgentCreated     Type = "agent_created"
	AgentDeleted     Type = "agent_deleted"
	AgentActivated   Type = "agent_activated"
	AgentDeactivated Type = "agent_deactivated"
	FileChanged      Type = "file_changed"
	CommandRun       Type = "command_run"
	FinalResult      Type = "final_result"
)

// Event is one observable state change
type Event struct {
	Type      Type      `json:"type"`
	AgentPath string    `json:"agent_path,omitempty"`
	AgentKind string    `json:"agent_kind,omitempty"`
	Path      string    `json:"path,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Bus fans events out to subscribers. Publishing never blocks; a subscriber
// that falls behind loses events rather than stalling an agent.
type Bus struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

// NewBus creates an event bus
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a receive channel and a cancel function
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if buffer <= 0 {
		buffer = 64
	}
	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking
func (b *Bus) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close shuts the bus down and closes all subscriber channels
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

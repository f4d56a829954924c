// Package orch drives the agent hierarchy: it delivers messages to agent
// prompters, enforces the one-call-in-flight rule per agent, and carries
// FINISH results upward until the master produces the final answer.
package orch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"hive/agent"
	"hive/config"
	"hive/events"
	"hive/interp"
	"hive/llm"
	"hive/shell"
	"hive/store"
)

// Orchestrator owns a single run: one master agent, the registry of live
// agents beneath it, and the goroutines executing their LLM turns. It
// implements interp.Host.
type Orchestrator struct {
	cfg      *config.Config
	log      *zap.Logger
	llms     *llm.Manager
	registry *agent.Registry
	interp   *interp.Interp
	bus      *events.Bus
	ledger   *store.Ledger // nil disables persistence

	wg sync.WaitGroup

	mu          sync.Mutex
	master      *agent.Manager
	runID       int64
	finalResult string

	done     chan struct{}
	doneOnce sync.Once
}

// New creates an orchestrator. bus and ledger may be nil.
func New(cfg *config.Config, llms *llm.Manager, bus *events.Bus, ledger *store.Ledger, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}

	o := &Orchestrator{
		cfg:      cfg,
		log:      log,
		llms:     llms,
		registry: agent.NewRegistry(),
		bus:      bus,
		ledger:   ledger,
		done:     make(chan struct{}),
	}

	runner := shell.NewRunner(cfg.Workspace.Path, cfg.Shell.AllowedCommands)
	o.interp = interp.New(interp.Options{
		Root:             cfg.Workspace.Path,
		Runner:           runner,
		RunTimeout:       time.Duration(cfg.Shell.RunTimeoutSeconds) * time.Second,
		EphemeralTimeout: time.Duration(cfg.Shell.EphemeralRunTimeoutSeconds) * time.Second,
		Registry:         o.registry,
		Host:             o,
		Bus:              bus,
		Log:              log,
	})
	return o
}

// Registry exposes the live agent registry (read access for front-ends)
func (o *Orchestrator) Registry() *agent.Registry { return o.registry }

// Done is closed once the master has produced the final result
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

// FinalResult returns the master's FINISH prompt, once available
func (o *Orchestrator) FinalResult() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.finalResult
}

// Run executes one full request: bootstrap the master, feed it the user's
// prompt, and block until the master finishes or ctx is cancelled. In-flight
// agent turns are drained before Run returns.
func (o *Orchestrator) Run(ctx context.Context, prompt string) (string, error) {
	master := agent.NewMaster()
	if err := o.registry.Register(master); err != nil {
		return "", fmt.Errorf("failed to bootstrap master: %w", err)
	}
	o.mu.Lock()
	o.master = master
	o.mu.Unlock()

	if o.ledger != nil {
		runID, err := o.ledger.BeginRun(prompt)
		if err != nil {
			o.log.Warn("ledger unavailable, continuing without persistence", zap.Error(err))
		} else {
			o.mu.Lock()
			o.runID = runID
			o.mu.Unlock()
		}
	}

	task := agent.NewTaskMessage(prompt, "user", master.Path())
	o.deliver(ctx, master, task)

	select {
	case <-o.done:
	case <-ctx.Done():
	}
	o.wg.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return o.FinalResult(), nil
}

// DeliverTask implements interp.Host: hand a delegation to the child's
// prompter on its own goroutine so the delegating turn never blocks.
func (o *Orchestrator) DeliverTask(ctx context.Context, child agent.Agent, msg *agent.TaskMessage) {
	o.deliver(ctx, child, msg)
}

// SpawnTester implements interp.Host. The tester is registered and recorded
// on its parent before its first turn is scheduled, so a fast FINISH can
// never race the bookkeeping.
func (o *Orchestrator) SpawnTester(ctx context.Context, parent agent.Agent, prompt string) (string, error) {
	t := agent.NewTester(parent.Path())
	if err := o.registry.Register(t); err != nil {
		return "", err
	}
	parent.AddEphemeral(t.Name())

	o.publish(events.Event{
		Type:      events.AgentCreated,
		AgentPath: t.Path(),
		AgentKind: string(t.Kind()),
		Path:      t.ScratchPad(),
	})

	task := agent.NewTaskMessage(prompt, parent.Path(), t.Path())
	o.deliver(ctx, t, task)
	return t.Name(), nil
}

// ReportFinish implements interp.Host: route a FINISH result to the
// finishing agent's parent, or store it as the run's final result when the
// master finishes.
func (o *Orchestrator) ReportFinish(ctx context.Context, a agent.Agent, task *agent.TaskMessage, result string) {
	o.publish(events.Event{
		Type:      events.AgentDeactivated,
		AgentPath: a.Path(),
		AgentKind: string(a.Kind()),
	})

	if m, ok := a.(*agent.Manager); ok && m.IsMaster() {
		o.finishRun(result)
		return
	}

	if a.Kind() == agent.KindTester {
		// ephemeral agents die on report
		o.registry.Remove(a.Path())
		o.publish(events.Event{
			Type:      events.AgentDeleted,
			AgentPath: a.Path(),
			AgentKind: string(a.Kind()),
		})
	}

	parent, err := o.registry.Get(a.ParentPath())
	if err != nil {
		o.log.Error("finished agent has no live parent",
			zap.String("agent", a.Path()),
			zap.String("parent", a.ParentPath()))
		return
	}

	var original agent.TaskMessage
	if task != nil {
		original = *task
	}
	res := agent.NewResultMessage(original, result, a.Path(), parent.Path())
	o.deliver(ctx, parent, res)
}

// finishRun records the final result exactly once and releases Run
func (o *Orchestrator) finishRun(result string) {
	o.mu.Lock()
	o.finalResult = result
	runID := o.runID
	o.mu.Unlock()

	if o.ledger != nil && runID != 0 {
		if err := o.ledger.FinishRun(runID, result); err != nil {
			o.log.Warn("failed to persist final result", zap.Error(err))
		}
	}
	o.publish(events.Event{Type: events.FinalResult, Detail: result})
	o.doneOnce.Do(func() { close(o.done) })
}

// deliver routes a message to the recipient's prompter on a tracked
// goroutine
func (o *Orchestrator) deliver(ctx context.Context, recipient agent.Agent, msg agent.Message) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		switch r := recipient.(type) {
		case *agent.Manager:
			if r.IsMaster() {
				o.MasterPrompter(ctx, r, msg)
			} else {
				o.ManagerPrompter(ctx, r, msg)
			}
		case *agent.Coder:
			o.CoderPrompter(ctx, r, msg)
		case *agent.Tester:
			o.TesterPrompter(ctx, r, msg)
		default:
			o.log.Error("no prompter for agent", zap.String("agent", recipient.Path()))
		}
	}()
}

func (o *Orchestrator) publish(ev events.Event) {
	if o.bus != nil {
		o.bus.Publish(ev)
	}
}

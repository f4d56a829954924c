// Package interp translates parsed directives into concrete effects:
// filesystem mutation, shell execution, child spawning, and completion.
// Interpreters never call the LLM; every directive ends with at most one
// follow-up prompt enqueued on the acting agent, and every failure is
// recovered locally by enqueueing a descriptive prompt for the next turn.
package interp

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hive/agent"
	"hive/events"
	"hive/language"
	"hive/shell"
)

// Host is the orchestrator capability interpreters use for cross-agent
// effects. Keeping it an interface breaks the interp → orch dependency.
type Host interface {
	// DeliverTask hands a delegation message to the child's prompter
	DeliverTask(ctx context.Context, child agent.Agent, msg *agent.TaskMessage)

	// SpawnTester creates a fresh ephemeral tester for parent and starts
	// it on the given prompt; returns the tester's name
	SpawnTester(ctx context.Context, parent agent.Agent, prompt string) (string, error)

	// ReportFinish routes an agent's FINISH result to its parent, or
	// stores it as the final result for the master. task is the delegation
	// the result answers.
	ReportFinish(ctx context.Context, a agent.Agent, task *agent.TaskMessage, result string)
}

// Interp executes directives for all four languages. One instance serves
// every agent; per-agent state lives on the agents themselves.
type Interp struct {
	root             string // absolute project root
	runner           *shell.Runner
	runTimeout       time.Duration
	ephemeralTimeout time.Duration
	registry         *agent.Registry
	host             Host
	bus              *events.Bus
	log              *zap.Logger
}

// Options configures an interpreter
type Options struct {
	Root             string
	Runner           *shell.Runner
	RunTimeout       time.Duration
	EphemeralTimeout time.Duration
	Registry         *agent.Registry
	Host             Host
	Bus              *events.Bus
	Log              *zap.Logger
}

// New creates an interpreter
func New(opts Options) *Interp {
	if opts.RunTimeout == 0 {
		opts.RunTimeout = 300 * time.Second
	}
	if opts.EphemeralTimeout == 0 {
		opts.EphemeralTimeout = 120 * time.Second
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Interp{
		root:             opts.Root,
		runner:           opts.Runner,
		runTimeout:       opts.RunTimeout,
		ephemeralTimeout: opts.EphemeralTimeout,
		registry:         opts.Registry,
		host:             opts.Host,
		bus:              opts.Bus,
		log:              opts.Log,
	}
}

// Execute dispatches one directive for the given agent. A panic inside a
// handler becomes an "Exception during execution" prompt instead of
// crashing the runtime.
func (in *Interp) Execute(ctx context.Context, a agent.Agent, d language.Directive) {
	defer func() {
		if r := recover(); r != nil {
			in.log.Error("interpreter panic",
				zap.String("agent", a.Path()),
				zap.String("directive", d.Keyword()),
				zap.Any("panic", r))
			a.Enqueue(fmt.Sprintf("Exception during execution: %v", r))
		}
	}()

	var prompt string
	switch a.Kind() {
	case agent.KindMaster, agent.KindManager:
		prompt = in.executeManager(ctx, a.(*agent.Manager), d)
	case agent.KindCoder:
		prompt = in.executeCoder(ctx, a.(*agent.Coder), d)
	case agent.KindTester:
		prompt = in.executeTester(ctx, a.(*agent.Tester), d)
	default:
		prompt = fmt.Sprintf("Exception during execution: no interpreter for agent kind %s", a.Kind())
	}

	if prompt != "" {
		a.Enqueue(prompt)
	}
}

func (in *Interp) publish(ev events.Event) {
	if in.bus != nil {
		in.bus.Publish(ev)
	}
}

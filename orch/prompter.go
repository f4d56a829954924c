package orch

import (
	"context"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"hive/agent"
	"hive/events"
	"hive/language"
	"hive/llm"
)

// The four prompter entry points. Every message an agent receives flows
// through exactly one of these; they share promptAgent, which enforces the
// activation rules and the one-call-in-flight protocol.

// MasterPrompter handles messages addressed to the master
func (o *Orchestrator) MasterPrompter(ctx context.Context, m *agent.Manager, msg agent.Message) {
	o.promptAgent(ctx, m, msg)
}

// ManagerPrompter handles messages addressed to a manager
func (o *Orchestrator) ManagerPrompter(ctx context.Context, m *agent.Manager, msg agent.Message) {
	o.promptAgent(ctx, m, msg)
}

// CoderPrompter handles messages addressed to a coder
func (o *Orchestrator) CoderPrompter(ctx context.Context, c *agent.Coder, msg agent.Message) {
	o.promptAgent(ctx, c, msg)
}

// TesterPrompter handles the single task message a tester ever receives
func (o *Orchestrator) TesterPrompter(ctx context.Context, t *agent.Tester, msg agent.Message) {
	o.promptAgent(ctx, t, msg)
}

// promptAgent turns an incoming message into a queued prompt and schedules
// an LLM turn. A delegation activates the agent; a result clears the
// sender's bookkeeping and arrives prefixed with the child's name.
func (o *Orchestrator) promptAgent(ctx context.Context, a agent.Agent, msg agent.Message) {
	var prompt string

	switch m := msg.(type) {
	case *agent.TaskMessage:
		if o.ledger != nil {
			if err := o.ledger.RecordTask(m); err != nil {
				o.log.Warn("failed to record task", zap.Error(err))
			}
		}
		if err := a.Activate(m); err != nil {
			o.reportActivationFailure(ctx, a, m, err)
			return
		}
		o.publish(events.Event{
			Type:      events.AgentActivated,
			AgentPath: a.Path(),
			AgentKind: string(a.Kind()),
			Detail:    m.TaskID,
		})
		prompt = m.TaskString

	case *agent.ResultMessage:
		if o.ledger != nil {
			if err := o.ledger.RecordResult(m); err != nil {
				o.log.Warn("failed to record result", zap.Error(err))
			}
		}
		prompt = "[" + o.settleSender(a, m.Sender) + "] " + m.Result

	default:
		o.log.Error("unknown message type", zap.String("agent", a.Path()))
		return
	}

	a.Enqueue(prompt)
	o.schedule(ctx, a)
}

// settleSender clears the reporting child from the recipient's bookkeeping
// and returns the child's display name
func (o *Orchestrator) settleSender(a agent.Agent, sender string) string {
	if strings.HasPrefix(sender, agent.ScratchPadDir+"/") {
		name := strings.TrimSuffix(path.Base(sender), ".py")
		if !a.RemoveEphemeral(name) {
			o.log.Warn("result from unknown ephemeral agent",
				zap.String("agent", a.Path()),
				zap.String("sender", sender))
		}
		return name
	}
	if m, ok := a.(*agent.Manager); ok {
		if !m.ChildReported(sender) {
			o.log.Warn("result from child that was not being waited on",
				zap.String("agent", a.Path()),
				zap.String("sender", sender))
		}
	}
	return path.Base(sender)
}

// reportActivationFailure bubbles the one non-recoverable error kind up to
// the delegating parent as a prompt. The parent's bookkeeping for the failed
// hand-off is undone so it is not left waiting forever.
func (o *Orchestrator) reportActivationFailure(ctx context.Context, a agent.Agent, task *agent.TaskMessage, err error) {
	o.log.Warn("activation failed",
		zap.String("agent", a.Path()),
		zap.String("sender", task.Sender),
		zap.Error(err))

	parent, perr := o.registry.Get(task.Sender)
	if perr != nil {
		// the initial user delegation has no parent agent to report to
		o.finishRun(fmt.Sprintf("DELEGATE failed: %v", err))
		return
	}
	if m, ok := parent.(*agent.Manager); ok {
		m.ChildReported(a.Path())
	}
	parent.Enqueue(fmt.Sprintf("DELEGATE failed: %v", err))
	o.schedule(ctx, parent)
}

// schedule starts an LLM turn if the agent has queued prompts and no call in
// flight. The consolidated prompt is drained under the agent's lock; the
// turn itself runs on its own goroutine.
func (o *Orchestrator) schedule(ctx context.Context, a agent.Agent) {
	consolidated, ok := a.BeginCall()
	if !ok {
		return
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.apiCall(ctx, a, consolidated)
	}()
}

// apiCall executes one full agent turn: build the prompt, call the model,
// interpret every directive of the response, then release the single-flight
// guard and reschedule if feedback accumulated meanwhile.
func (o *Orchestrator) apiCall(ctx context.Context, a agent.Agent, consolidated string) {
	resp, err := o.llms.Generate(ctx, a.Purpose(), llm.Request{
		Messages: o.buildMessages(a, consolidated),
	})
	if err != nil {
		if ctx.Err() != nil {
			a.EndCall()
			return
		}
		o.log.Error("LLM call failed",
			zap.String("agent", a.Path()),
			zap.String("purpose", string(a.Purpose())),
			zap.Error(err))
		a.Enqueue(fmt.Sprintf("Exception during execution: LLM call failed: %v", err))
	} else {
		o.log.Debug("LLM turn",
			zap.String("agent", a.Path()),
			zap.String("model", resp.Model),
			zap.Int("tokens", resp.TokensUsed))
		o.interpret(ctx, a, resp.Content)
	}

	if a.EndCall() && ctx.Err() == nil {
		o.schedule(ctx, a)
	}
}

// interpret splits a model response into directives and executes them in
// order. A line that fails to parse becomes feedback for the next turn; the
// remaining directives still run.
func (o *Orchestrator) interpret(ctx context.Context, a agent.Agent, response string) {
	chunks := language.SplitDirectives(response)
	if len(chunks) == 0 {
		a.Enqueue("PARSING FAILED: response contained no directives")
		return
	}

	for _, chunk := range chunks {
		d, err := o.parseFor(a, chunk)
		if err != nil {
			a.Enqueue("PARSING FAILED: " + err.Error())
			continue
		}
		o.interp.Execute(ctx, a, d)
	}
}

// parseFor parses one directive in the language of the agent's role
func (o *Orchestrator) parseFor(a agent.Agent, chunk string) (language.Directive, error) {
	switch a.Kind() {
	case agent.KindMaster:
		return language.ParseMaster(chunk)
	case agent.KindManager:
		return language.ParseManager(chunk)
	case agent.KindCoder:
		return language.ParseCoder(chunk)
	case agent.KindTester:
		return language.ParseTester(chunk)
	default:
		return nil, &language.ParseError{Msg: fmt.Sprintf("no language for agent kind %s", a.Kind())}
	}
}

// buildMessages assembles the conversation for one turn: the static role
// preamble, the agent's current state, and the consolidated prompt.
func (o *Orchestrator) buildMessages(a agent.Agent, consolidated string) []llm.Message {
	var user strings.Builder

	if task := a.ActiveTask(); task != nil {
		user.WriteString("Your current task: ")
		user.WriteString(task.TaskString)
		user.WriteString("\n\n")
	}
	if m, ok := a.(*agent.Manager); ok {
		if names := m.ChildNames(); len(names) > 0 {
			user.WriteString("Your children: ")
			user.WriteString(strings.Join(names, ", "))
			user.WriteString("\n\n")
		}
	}
	if names := a.EphemeralNames(); len(names) > 0 {
		user.WriteString("Running ephemeral agents: ")
		user.WriteString(strings.Join(names, ", "))
		user.WriteString("\n\n")
	}
	if dump := a.MemoryDump(); dump != "" {
		user.WriteString(dump)
		user.WriteString("\n")
	}
	user.WriteString(consolidated)

	return []llm.Message{
		{Role: "system", Content: rolePreamble(a)},
		{Role: "user", Content: user.String()},
	}
}

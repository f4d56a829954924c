package interp

import (
	"context"
	"fmt"

	"hive/agent"
	"hive/language"
)

// executeCoder interprets one coder-language directive. The coder's only
// writable path is its own file; everything else is snapshot reads.
func (in *Interp) executeCoder(ctx context.Context, c *agent.Coder, d language.Directive) string {
	switch dir := d.(type) {
	case language.Read:
		return in.readIntoMemory(c, dir.Target)
	case language.Run:
		return in.runCommand(ctx, c, dir.Command)
	case language.Change:
		return in.changeFile(c, c.OwnFile(), dir.Content)
	case language.Replace:
		return in.applyEdits(c, "REPLACE", c.OwnFile(), dir.Items, false)
	case language.Insert:
		return in.applyEdits(c, "INSERT", c.OwnFile(), []language.ReplaceItem{{From: dir.From, To: dir.To}}, true)
	case language.Spawn:
		return in.spawnEphemerals(ctx, c, dir.Items)
	case language.Wait:
		return waitPrompt(c)
	case language.Finish:
		return in.finishAgent(ctx, c, dir.Prompt)
	default:
		return fmt.Sprintf("Exception during execution: directive %s is not part of the coder language", d.Keyword())
	}
}

// finishAgent implements FINISH for persistent agents: refuse while
// anything is still running under this agent, otherwise deactivate and
// propagate the result.
func (in *Interp) finishAgent(ctx context.Context, a agent.Agent, prompt string) string {
	if msg := finishRefusal(a); msg != "" {
		return msg
	}
	task := a.ActiveTask()
	if err := a.Deactivate(); err != nil {
		return fmt.Sprintf("FINISH failed: %v", err)
	}
	in.host.ReportFinish(ctx, a, task, prompt)
	return ""
}

// finishRefusal renders the lifecycle error for a FINISH issued while
// children or ephemeral agents are active
func finishRefusal(a agent.Agent) string {
	children := 0
	if m, ok := a.(*agent.Manager); ok {
		children = m.ActiveChildCount()
	}
	ephemerals := a.EphemeralCount()

	switch {
	case children > 0 && ephemerals > 0:
		return fmt.Sprintf("FINISH failed: Cannot finish with %d active children and %d active ephemeral agents", children, ephemerals)
	case children > 0:
		return fmt.Sprintf("FINISH failed: Cannot finish with %d active children", children)
	case ephemerals > 0:
		return fmt.Sprintf("FINISH failed: Cannot finish with %d active ephemeral agents", ephemerals)
	default:
		return ""
	}
}

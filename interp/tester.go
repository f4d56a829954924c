package interp

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"hive/agent"
	"hive/language"
)

// executeTester interprets one tester-language directive. CHANGE and
// REPLACE operate on the tester's scratch pad; FINISH deletes the pad and
// reports once.
func (in *Interp) executeTester(ctx context.Context, t *agent.Tester, d language.Directive) string {
	switch dir := d.(type) {
	case language.Read:
		return in.readIntoMemory(t, dir.Target)
	case language.Run:
		return in.runCommand(ctx, t, dir.Command)
	case language.Change:
		return in.changeFile(t, t.ScratchPad(), dir.Content)
	case language.Replace:
		return in.applyEdits(t, "REPLACE", t.ScratchPad(), dir.Items, false)
	case language.Finish:
		return in.finishTester(ctx, t, dir.Prompt)
	default:
		return fmt.Sprintf("Exception during execution: directive %s is not part of the tester language", d.Keyword())
	}
}

func (in *Interp) finishTester(ctx context.Context, t *agent.Tester, prompt string) string {
	// scratch pad dies with the tester
	if err := os.Remove(in.abs(t.ScratchPad())); err != nil && !os.IsNotExist(err) {
		in.log.Warn("failed to remove scratch pad", zap.Error(err))
	}

	task := t.ActiveTask()
	if err := t.Deactivate(); err != nil {
		return fmt.Sprintf("FINISH failed: %v", err)
	}
	in.host.ReportFinish(ctx, t, task, prompt)
	return ""
}

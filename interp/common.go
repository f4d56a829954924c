package interp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"hive/agent"
	"hive/events"
	"hive/language"
	"hive/shell"
)

// readIntoMemory implements READ for all agents: snapshot the file into the
// agent's read memory. Paths resolve against the project root.
func (in *Interp) readIntoMemory(a agent.Agent, target string) string {
	rel, ok := resolve(target)
	if !ok {
		return fmt.Sprintf("READ failed: Destination %s is out of scope", target)
	}

	data, err := os.ReadFile(in.abs(rel))
	if err != nil {
		return fmt.Sprintf("READ failed: File not found: %s", target)
	}

	a.Remember(rel, string(data))
	return fmt.Sprintf("READ succeeded: %s was added to memory for future reads", target)
}

// runCommand implements RUN. The allow-list is checked before any process
// is spawned; output is captured, clipped and formatted by which streams
// are non-empty.
func (in *Interp) runCommand(ctx context.Context, a agent.Agent, command string) string {
	if !in.runner.Allowed(command) {
		return "RUN failed: Invalid command: " + command
	}

	timeout := in.runTimeout
	if a.Kind() == agent.KindTester {
		timeout = in.ephemeralTimeout
	}

	res, err := in.runner.Run(ctx, command, timeout)
	if err != nil {
		return fmt.Sprintf("RUN failed: %v", err)
	}

	in.publish(events.Event{
		Type:      events.CommandRun,
		AgentPath: a.Path(),
		AgentKind: string(a.Kind()),
		Detail:    command,
	})
	in.log.Debug("command executed",
		zap.String("agent", a.Path()),
		zap.String("command", command),
		zap.Int("exit", res.ExitCode),
		zap.Duration("took", res.Duration))

	if res.TimedOut {
		return fmt.Sprintf("RUN failed: Command timed out after %d seconds: %s",
			int(timeout/time.Second), command)
	}
	if res.ExitCode == 0 {
		if res.Stdout == "" && res.Stderr == "" {
			return "RUN succeeded: Command produced no output"
		}
		return "RUN succeeded: " + formatStreams(res)
	}
	return "RUN failed: " + formatStreams(res)
}

func formatStreams(res *shell.Result) string {
	switch {
	case res.Stdout != "" && res.Stderr != "":
		return fmt.Sprintf("Output:\n%s\nError:\n%s", res.Stdout, res.Stderr)
	case res.Stderr != "":
		return "Error:\n" + res.Stderr
	case res.Stdout != "":
		return "Output:\n" + res.Stdout
	default:
		return fmt.Sprintf("Exit code %d with no output", res.ExitCode)
	}
}

// changeFile implements CHANGE: atomically overwrite ownFile with new
// content, creating parent directories as needed.
func (in *Interp) changeFile(a agent.Agent, ownFile, content string) string {
	if ownFile == "" {
		return "CHANGE failed: This agent has no file of its own"
	}

	if err := in.writeFileAtomic(ownFile, content); err != nil {
		return fmt.Sprintf("CHANGE failed: %v", err)
	}

	in.publish(events.Event{
		Type:      events.FileChanged,
		AgentPath: a.Path(),
		AgentKind: string(a.Kind()),
		Path:      ownFile,
	})
	return fmt.Sprintf("CHANGE succeeded: %s was replaced with new content", filepath.Base(ownFile))
}

// applyEdits implements REPLACE and INSERT against ownFile. Every from
// string must occur exactly once before any byte changes: missing strings
// are reported as a list, ambiguous ones with their occurrence counts, and
// the file is written only when all preconditions hold.
func (in *Interp) applyEdits(a agent.Agent, op, ownFile string, items []language.ReplaceItem, insert bool) string {
	if ownFile == "" {
		return op + " failed: This agent has no file of its own"
	}

	data, err := os.ReadFile(in.abs(ownFile))
	if err != nil {
		return fmt.Sprintf("%s failed: File not found: %s", op, ownFile)
	}
	content := string(data)

	var missing []string
	var ambiguous []string
	for _, item := range items {
		switch n := strings.Count(content, item.From); {
		case n == 0:
			missing = append(missing, fmt.Sprintf("%q", item.From))
		case n > 1:
			ambiguous = append(ambiguous, fmt.Sprintf("%q has %d occurrences", item.From, n))
		}
	}
	if len(missing) > 0 {
		return fmt.Sprintf("%s failed: The following strings were not found in %s: %s",
			op, ownFile, strings.Join(missing, ", "))
	}
	if len(ambiguous) > 0 {
		return fmt.Sprintf("%s failed: Ambiguous matches in %s: %s",
			op, ownFile, strings.Join(ambiguous, ", "))
	}

	for _, item := range items {
		to := item.To
		if insert {
			if to == "" {
				continue
			}
			to = item.From + item.To
		}
		content = strings.Replace(content, item.From, to, 1)
	}

	if err := in.writeFileAtomic(ownFile, content); err != nil {
		return fmt.Sprintf("%s failed: %v", op, err)
	}

	in.publish(events.Event{
		Type:      events.FileChanged,
		AgentPath: a.Path(),
		AgentKind: string(a.Kind()),
		Path:      ownFile,
	})
	if insert {
		return fmt.Sprintf("INSERT succeeded: content inserted in %s", filepath.Base(ownFile))
	}
	return fmt.Sprintf("REPLACE succeeded: %d replacements applied to %s", len(items), filepath.Base(ownFile))
}

// writeFileAtomic writes content via a temp file and rename so readers
// never observe a half-written file
func (in *Interp) writeFileAtomic(rel, content string) error {
	target := in.abs(rel)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".hive-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, target)
}

// spawnEphemerals implements SPAWN for managers and coders
func (in *Interp) spawnEphemerals(ctx context.Context, a agent.Agent, items []language.SpawnItem) string {
	for _, item := range items {
		if item.EphemeralType != "tester" {
			return "SPAWN failed: Unknown ephemeral type: " + item.EphemeralType
		}
	}
	for _, item := range items {
		// the host records the ephemeral on the parent before the tester
		// can possibly report back
		if _, err := in.host.SpawnTester(ctx, a, item.Prompt); err != nil {
			return fmt.Sprintf("SPAWN failed: %v", err)
		}
	}
	return ""
}

// waitPrompt implements WAIT: quiesce if something is running, otherwise
// tell the model there is nothing to wait for
func waitPrompt(a agent.Agent) string {
	if a.Busy() > 0 {
		return ""
	}
	return "WAIT failed: No active children or ephemeral agents to wait for"
}

package interp

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"hive/agent"
	"hive/events"
	"hive/language"
)

// executeManager interprets one manager-language directive. The master is
// a manager scoped to the project root, so the same interpreter serves
// both; only FINISH routing differs and that lives in the host.
func (in *Interp) executeManager(ctx context.Context, m *agent.Manager, d language.Directive) string {
	switch dir := d.(type) {
	case language.Delegate:
		return in.delegate(ctx, m, dir.Items)
	case language.Create:
		return in.createChild(m, dir.Target)
	case language.Delete:
		return in.deleteChild(m, dir.Target)
	case language.ReadTarget:
		return in.readTarget(m, dir.Target)
	case language.Spawn:
		return in.spawnEphemerals(ctx, m, dir.Items)
	case language.Run:
		return in.runCommand(ctx, m, dir.Command)
	case language.UpdateReadme:
		return in.updateReadme(m, dir.Content)
	case language.Wait:
		return waitPrompt(m)
	case language.Finish:
		return in.finishAgent(ctx, m, dir.Prompt)
	default:
		return fmt.Sprintf("Exception during execution: directive %s is not part of the manager language", d.Keyword())
	}
}

// delegate hands tasks to existing children. All targets must be known
// before any task is sent.
func (in *Interp) delegate(ctx context.Context, m *agent.Manager, items []language.DelegateItem) string {
	var unknown []string
	for _, item := range items {
		if _, ok := m.Child(item.Target.Name); !ok {
			unknown = append(unknown, item.Target.Name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Sprintf("DELEGATE failed: The following targets are not within this manager's scope – %s",
			strings.Join(unknown, ", "))
	}

	for _, item := range items {
		child, _ := m.Child(item.Target.Name)
		msg := agent.NewTaskMessage(item.Prompt, m.Path(), child.Path())
		m.RecordDelegation(child.Path(), msg.TaskID)
		in.host.DeliverTask(ctx, child, msg)
	}
	return ""
}

// createChild makes a file or folder inside the manager's scope and
// instantiates the matching child agent: a Coder for files, a Manager for
// folders.
func (in *Interp) createChild(m *agent.Manager, target language.TargetRef) string {
	childPath, ok := resolve(path.Join(m.Path(), target.Name))
	if !ok || !withinScope(m.Path(), childPath) {
		return fmt.Sprintf("CREATE failed: Destination %s is out of scope", target.Name)
	}
	if _, exists := m.Child(path.Base(childPath)); exists {
		return fmt.Sprintf("CREATE failed: %s already exists", target.Name)
	}
	if _, err := os.Stat(in.abs(childPath)); err == nil {
		return fmt.Sprintf("CREATE failed: %s already exists", target.Name)
	}

	var child agent.Agent
	switch target.Kind {
	case language.TargetFolder:
		if err := os.MkdirAll(in.abs(childPath), 0755); err != nil {
			return fmt.Sprintf("CREATE failed: %v", err)
		}
		child = agent.NewManager(childPath, m.Path())
	case language.TargetFile:
		if err := in.writeFileAtomic(childPath, ""); err != nil {
			return fmt.Sprintf("CREATE failed: %v", err)
		}
		child = agent.NewCoder(childPath, m.Path())
	default:
		return fmt.Sprintf("CREATE failed: unknown target kind %q", target.Kind)
	}

	if err := in.registry.Register(child); err != nil {
		return fmt.Sprintf("CREATE failed: %v", err)
	}
	if err := m.AddChild(child); err != nil {
		in.registry.Remove(child.Path())
		return fmt.Sprintf("CREATE failed: %v", err)
	}

	in.publish(events.Event{
		Type:      events.AgentCreated,
		AgentPath: child.Path(),
		AgentKind: string(child.Kind()),
		Path:      childPath,
	})
	return fmt.Sprintf("CREATE succeeded: %s %s was created", target.Kind, target.Name)
}

// deleteChild removes an inactive child agent and its file or folder
func (in *Interp) deleteChild(m *agent.Manager, target language.TargetRef) string {
	child, ok := m.Child(target.Name)
	if !ok {
		return fmt.Sprintf("DELETE failed: Destination %s is out of scope", target.Name)
	}
	if child.IsActive() {
		return fmt.Sprintf("DELETE failed: Cannot delete %s while its agent is active", target.Name)
	}

	if err := os.RemoveAll(in.abs(child.Path())); err != nil {
		return fmt.Sprintf("DELETE failed: %v", err)
	}
	m.RemoveChild(target.Name)
	in.registry.RemoveSubtree(child.Path())

	in.publish(events.Event{
		Type:      events.AgentDeleted,
		AgentPath: child.Path(),
		AgentKind: string(child.Kind()),
		Path:      child.Path(),
	})
	return fmt.Sprintf("DELETE succeeded: %s %s was removed", target.Kind, target.Name)
}

// readTarget implements the manager form of READ: files read like the
// coder's READ, folders read the folder's README when present
func (in *Interp) readTarget(m *agent.Manager, target language.TargetRef) string {
	if target.Kind == language.TargetFile {
		return in.readIntoMemory(m, target.Name)
	}

	folder, ok := resolve(target.Name)
	if !ok {
		return fmt.Sprintf("READ failed: Destination %s is out of scope", target.Name)
	}
	readme := path.Join(folder, path.Base(folder)+"_README.md")
	data, err := os.ReadFile(in.abs(readme))
	if err != nil {
		return fmt.Sprintf("READ failed: File not found: %s", readme)
	}
	m.Remember(readme, string(data))
	return fmt.Sprintf("READ succeeded: %s was added to memory for future reads", readme)
}

// updateReadme rewrites the manager's own README
func (in *Interp) updateReadme(m *agent.Manager, content string) string {
	if err := in.writeFileAtomic(m.PersonalFile(), content); err != nil {
		return fmt.Sprintf("UPDATE_README failed: %v", err)
	}

	in.publish(events.Event{
		Type:      events.FileChanged,
		AgentPath: m.Path(),
		AgentKind: string(m.Kind()),
		Path:      m.PersonalFile(),
	})
	return fmt.Sprintf("UPDATE_README succeeded: %s was updated", m.PersonalFile())
}

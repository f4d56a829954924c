package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueDeduplicates(t *testing.T) {
	c := NewCoder("main.py", "")

	assert.True(t, c.Enqueue("first"))
	assert.True(t, c.Enqueue("second"))
	assert.False(t, c.Enqueue("first"), "duplicate prompt must not be re-added")

	assert.Equal(t, []string{"first", "second"}, c.QueuedPrompts())
}

func TestBeginCallDrainsQueueInOrder(t *testing.T) {
	c := NewCoder("main.py", "")
	require.NoError(t, c.Activate(NewTaskMessage("write main", "", "main.py")))

	c.Enqueue("first")
	c.Enqueue("second")

	consolidated, ok := c.BeginCall()
	require.True(t, ok)
	assert.Equal(t, "first\n\nsecond", consolidated)
	assert.Empty(t, c.QueuedPrompts())
}

func TestBeginCallSingleFlight(t *testing.T) {
	c := NewCoder("main.py", "")
	require.NoError(t, c.Activate(NewTaskMessage("task", "", "main.py")))
	c.Enqueue("go")

	_, ok := c.BeginCall()
	require.True(t, ok)

	// a second call while the first is in flight must stall
	c.Enqueue("more")
	_, ok = c.BeginCall()
	assert.False(t, ok)

	// EndCall releases the guard and reports the pending prompt
	assert.True(t, c.EndCall())
	consolidated, ok := c.BeginCall()
	require.True(t, ok)
	assert.Equal(t, "more", consolidated)
}

func TestBeginCallRequiresQueuedPrompts(t *testing.T) {
	c := NewCoder("main.py", "")
	_, ok := c.BeginCall()
	assert.False(t, ok)
}

func TestEndCallAfterDeactivation(t *testing.T) {
	c := NewCoder("main.py", "")
	require.NoError(t, c.Activate(NewTaskMessage("task", "", "main.py")))
	c.Enqueue("go")
	_, ok := c.BeginCall()
	require.True(t, ok)

	require.NoError(t, c.Deactivate())
	c.Enqueue("late feedback")
	assert.False(t, c.EndCall(), "idle agent must not be rescheduled")
}

func TestActivateTwiceFails(t *testing.T) {
	c := NewCoder("main.py", "")
	require.NoError(t, c.Activate(NewTaskMessage("one", "", "main.py")))

	err := c.Activate(NewTaskMessage("two", "", "main.py"))
	require.Error(t, err)

	var actErr *ActivationError
	require.True(t, errors.As(err, &actErr))
	assert.Equal(t, "main.py", actErr.Agent)
}

func TestDeactivateRefusesWithEphemerals(t *testing.T) {
	c := NewCoder("main.py", "")
	require.NoError(t, c.Activate(NewTaskMessage("task", "", "main.py")))

	c.AddEphemeral("tester-abc12345")
	assert.Error(t, c.Deactivate())

	assert.True(t, c.RemoveEphemeral("tester-abc12345"))
	assert.False(t, c.RemoveEphemeral("tester-abc12345"))
	assert.NoError(t, c.Deactivate())
}

func TestMemoryDumpKeepsReadOrder(t *testing.T) {
	c := NewCoder("main.py", "")
	c.Remember("a.py", "aaa")
	c.Remember("b.py", "bbb")
	c.Remember("a.py", "updated")

	dump := c.MemoryDump()
	assert.Equal(t, "Files in memory:\n--- a.py ---\nupdated\n--- b.py ---\nbbb\n", dump)
}

func TestMemoryDumpEmptyWhenNothingRead(t *testing.T) {
	c := NewCoder("main.py", "")
	assert.Equal(t, "", c.MemoryDump())
}

func TestManagerBusyCountsChildrenAndEphemerals(t *testing.T) {
	m := NewManager("src", "")
	m.RecordDelegation("src/main.py", "task-1")
	m.AddEphemeral("tester-deadbeef")

	assert.Equal(t, 2, m.Busy())
	assert.Error(t, m.Deactivate())

	assert.True(t, m.ChildReported("src/main.py"))
	assert.False(t, m.ChildReported("src/main.py"))
	m.RemoveEphemeral("tester-deadbeef")
	assert.Equal(t, 0, m.Busy())
}

func TestManagerChildren(t *testing.T) {
	m := NewManager("src", "")
	coder := NewCoder("src/main.py", "src")

	require.NoError(t, m.AddChild(coder))
	assert.Error(t, m.AddChild(coder), "duplicate child name must be rejected")

	got, ok := m.Child("main.py")
	require.True(t, ok)
	assert.Equal(t, coder, got)

	assert.True(t, m.RemoveChild("main.py"))
	_, ok = m.Child("main.py")
	assert.False(t, ok)
}

func TestMasterIdentity(t *testing.T) {
	m := NewMaster()
	assert.True(t, m.IsMaster())
	assert.Equal(t, "", m.Path())
	assert.Equal(t, "project", m.Name())
	assert.Equal(t, "project_README.md", m.PersonalFile())
}

func TestManagerPersonalFile(t *testing.T) {
	m := NewManager("src/api", "src")
	assert.Equal(t, "src/api/api_README.md", m.PersonalFile())
}

func TestTesterScratchPad(t *testing.T) {
	a := NewTester("src/main.py")
	b := NewTester("src/main.py")

	assert.NotEqual(t, a.Name(), b.Name(), "concurrent testers must not collide")
	assert.Equal(t, ScratchPadDir+"/"+a.Name()+".py", a.ScratchPad())
	assert.Equal(t, a.ScratchPad(), a.Path())
}

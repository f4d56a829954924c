package orch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hive/agent"
	"hive/config"
	"hive/events"
	"hive/llm"
)

type testRig struct {
	orch    *Orchestrator
	root    string
	bus     *events.Bus
	clients map[llm.Purpose]*llm.MockClient
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Workspace.Path = root
	cfg.Shell.AllowedCommands = []string{"echo"}
	cfg.Shell.RunTimeoutSeconds = 5
	cfg.Shell.EphemeralRunTimeoutSeconds = 5

	llms := llm.NewManager()
	clients := make(map[llm.Purpose]*llm.MockClient)
	for _, p := range []llm.Purpose{llm.PurposeMaster, llm.PurposeManager, llm.PurposeCoder, llm.PurposeTester} {
		c := llm.NewMockClient(string(p))
		clients[p] = c
		llms.RegisterClient(p, c)
	}

	bus := events.NewBus()
	t.Cleanup(bus.Close)

	return &testRig{
		orch:    New(cfg, llms, bus, nil, nil),
		root:    root,
		bus:     bus,
		clients: clients,
	}
}

func (r *testRig) run(t *testing.T, prompt string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := r.orch.Run(ctx, prompt)
	require.NoError(t, err)
	return result
}

// userContent returns the user half of the nth request the client saw
func userContent(t *testing.T, c *llm.MockClient, n int) string {
	t.Helper()
	calls := c.Calls()
	require.Greater(t, len(calls), n)
	msgs := calls[n].Messages
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1].Content
}

func TestRunDelegatesToCoderAndCollectsResult(t *testing.T) {
	rig := newTestRig(t)

	rig.clients[llm.PurposeMaster].Script(
		`CREATE file "main.py"`,
		`DELEGATE file "main.py" PROMPT="write hello world"`,
		`FINISH PROMPT="all done"`,
	)
	rig.clients[llm.PurposeCoder].Script(
		"CHANGE CONTENT=\"\"\"print('hello world')\n\"\"\"\nFINISH PROMPT=\"main.py written\"",
	)

	result := rig.run(t, "build a hello world program")
	assert.Equal(t, "all done", result)

	data, err := os.ReadFile(filepath.Join(rig.root, "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('hello world')\n", string(data))

	// the coder's report reaches the master prefixed with the child's name
	assert.Contains(t, userContent(t, rig.clients[llm.PurposeMaster], 2), "[main.py] main.py written")

	// the coder saw its delegated task
	assert.Contains(t, userContent(t, rig.clients[llm.PurposeCoder], 0), "write hello world")
}

func TestRunSpawnedTesterReportsBack(t *testing.T) {
	rig := newTestRig(t)

	rig.clients[llm.PurposeMaster].Script(
		`CREATE file "main.py"`,
		`DELEGATE file "main.py" PROMPT="write and verify"`,
		`FINISH PROMPT="done"`,
	)
	rig.clients[llm.PurposeCoder].Script(
		`SPAWN tester PROMPT="verify main.py"`,
		`FINISH PROMPT="verified"`,
	)
	rig.clients[llm.PurposeTester].Script(
		`FINISH PROMPT="looks good"`,
	)

	result := rig.run(t, "build and verify")
	assert.Equal(t, "done", result)

	// the tester saw its task and the coder got the prefixed findings
	assert.Contains(t, userContent(t, rig.clients[llm.PurposeTester], 0), "verify main.py")
	feedback := userContent(t, rig.clients[llm.PurposeCoder], 1)
	assert.Contains(t, feedback, "[tester-")
	assert.Contains(t, feedback, "looks good")

	// the ephemeral agent is gone once it reported
	for _, a := range rig.orch.registry.List() {
		assert.NotEqual(t, agent.KindTester, a.Kind(), "finished tester must leave the registry")
	}
}

func TestRunRecoversFromUnparseableResponse(t *testing.T) {
	rig := newTestRig(t)

	rig.clients[llm.PurposeMaster].Script(
		"do some gibberish = that is not a directive",
		`FINISH PROMPT="recovered"`,
	)

	result := rig.run(t, "anything")
	assert.Equal(t, "recovered", result)

	assert.Contains(t, userContent(t, rig.clients[llm.PurposeMaster], 1), "PARSING FAILED")
}

func TestRunFailedDirectiveBecomesFeedback(t *testing.T) {
	rig := newTestRig(t)

	rig.clients[llm.PurposeMaster].Script(
		`RUN "rm -rf /"`,
		`FINISH PROMPT="gave up"`,
	)

	result := rig.run(t, "anything")
	assert.Equal(t, "gave up", result)

	assert.Contains(t, userContent(t, rig.clients[llm.PurposeMaster], 1), "RUN failed: Invalid command: rm -rf /")
}

func TestRunFinalResultEventPublished(t *testing.T) {
	rig := newTestRig(t)
	sub, cancel := rig.bus.Subscribe(64)
	defer cancel()

	rig.clients[llm.PurposeMaster].Script(`FINISH PROMPT="the answer"`)
	rig.run(t, "anything")

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-sub:
			if ev.Type == events.FinalResult {
				assert.Equal(t, "the answer", ev.Detail)
				return
			}
		case <-deadline:
			t.Fatal("final_result event never published")
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	rig := newTestRig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rig.orch.Run(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestActivationFailureReportsToParent(t *testing.T) {
	rig := newTestRig(t)
	o := rig.orch

	master := agent.NewMaster()
	require.NoError(t, o.registry.Register(master))
	require.NoError(t, master.Activate(agent.NewTaskMessage("build", "user", "")))

	coder := agent.NewCoder("main.py", "")
	require.NoError(t, o.registry.Register(coder))
	require.NoError(t, master.AddChild(coder))
	require.NoError(t, coder.Activate(agent.NewTaskMessage("first task", "", "main.py")))
	master.RecordDelegation("main.py", "task-2")

	// a second delegation to the busy coder must bounce back to the master
	o.promptAgent(context.Background(), coder, agent.NewTaskMessage("second task", "", "main.py"))
	o.wg.Wait()

	assert.Equal(t, 0, master.ActiveChildCount(), "failed hand-off must not leave the master waiting")
	assert.Contains(t, userContent(t, rig.clients[llm.PurposeMaster], 0), "DELEGATE failed")
	assert.Equal(t, "first task", coder.ActiveTask().TaskString, "the busy coder keeps its original task")
}

func TestSettleSenderStripsTesterSuffix(t *testing.T) {
	rig := newTestRig(t)
	c := agent.NewCoder("main.py", "")
	c.AddEphemeral("tester-abcd1234")

	name := rig.orch.settleSender(c, agent.ScratchPadDir+"/tester-abcd1234.py")
	assert.Equal(t, "tester-abcd1234", name)
	assert.Equal(t, 0, c.EphemeralCount())
}

func TestRolePreambles(t *testing.T) {
	master := agent.NewMaster()
	coder := agent.NewCoder("src/main.py", "src")
	tester := agent.NewTester("src/main.py")

	assert.Contains(t, rolePreamble(master), "MASTER")
	assert.Contains(t, rolePreamble(master), "DELEGATE")
	assert.Contains(t, rolePreamble(coder), "REPLACE")
	assert.False(t, strings.Contains(rolePreamble(tester), "DELEGATE"),
		"tester preamble must not advertise manager directives")
	assert.Contains(t, rolePreamble(tester), tester.ScratchPad())
}

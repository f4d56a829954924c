package agent

import (
	"path"

	"github.com/google/uuid"

	"hive/llm"
)

// ScratchPadDir is the project-root directory holding tester scratch pads
const ScratchPadDir = "scratch_pads"

// Tester is an ephemeral agent spawned for one analysis pass. It owns a
// scratch pad file, reports exactly once and dies; the scratch pad is
// deleted on FINISH. A tester never outlives its parent's current task.
type Tester struct {
	Base
}

// NewTester creates a fresh tester for the given parent. Each tester gets a
// unique name so concurrent spawns from one parent never collide.
func NewTester(parentPath string) *Tester {
	name := "tester-" + uuid.New().String()[:8]
	pad := path.Join(ScratchPadDir, name+".py")
	t := &Tester{
		Base: newBase(KindTester, pad, parentPath, pad, llm.PurposeTester),
	}
	t.name = name
	return t
}

// ScratchPad returns the tester's scratch pad path relative to the project
// root
func (t *Tester) ScratchPad() string { return t.personalFile }

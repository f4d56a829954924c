// Package shell executes RUN commands on behalf of agents. Execution is
// gated by a closed allow-list of command prefixes and bounded by a
// watchdog that kills the whole process group on timeout.
package shell

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// MaxStreamChars caps each captured stream; longer output is clipped with a
// truncation marker so a runaway command cannot flood the prompt queue.
const MaxStreamChars = 100_000

// TruncationMarker is appended to a clipped stream
const TruncationMarker = "\n... [output truncated]"

// Result captures one command execution
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// Runner executes allow-listed commands inside a fixed working directory
type Runner struct {
	workDir string
	allowed []string
}

// NewRunner creates a runner rooted at workDir with the given allow-list
func NewRunner(workDir string, allowed []string) *Runner {
	return &Runner{
		workDir: workDir,
		allowed: append([]string(nil), allowed...),
	}
}

// Allowed reports whether the command starts with one of the permitted
// prefixes. Matching is at token boundaries: "ls" admits "ls -la" but not
// "lsblk".
func (r *Runner) Allowed(command string) bool {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return false
	}
	for _, prefix := range r.allowed {
		if cmd == prefix || strings.HasPrefix(cmd, prefix+" ") {
			return true
		}
	}
	return false
}

// Run executes a command with the given watchdog timeout. The caller must
// have checked Allowed first; Run enforces it again and refuses to spawn
// for a rejected command.
func (r *Runner) Run(ctx context.Context, command string, timeout time.Duration) (*Result, error) {
	if !r.Allowed(command) {
		return nil, &RejectedError{Command: command}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name, args := shellInvocation(command)
	cmd := exec.Command(name, args...)
	cmd.Dir = r.workDir
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timedOut := false
	select {
	case <-runCtx.Done():
		// watchdog fired: take down the entire process group
		killProcessGroup(cmd)
		<-done
		timedOut = true
	case <-done:
	}

	res := &Result{
		Stdout:   clip(stdout.String()),
		Stderr:   clip(stderr.String()),
		TimedOut: timedOut,
		Duration: time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if timedOut {
		res.ExitCode = -1
	}
	return res, nil
}

// RejectedError reports a command whose prefix is not allow-listed
type RejectedError struct {
	Command string
}

func (e *RejectedError) Error() string {
	return "command not in allow-list: " + e.Command
}

func clip(s string) string {
	if len(s) <= MaxStreamChars {
		return s
	}
	return s[:MaxStreamChars] + TruncationMarker
}

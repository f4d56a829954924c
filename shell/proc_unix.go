//go:build !windows

package shell

import (
	"os/exec"
	"syscall"
)

func shellInvocation(command string) (string, []string) {
	return "sh", []string{"-c", command}
}

// setProcessGroup puts the child in its own process group so a timeout can
// kill the command and everything it spawned
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	pgid, err := syscall.Getpgid(cmd.Process.Pid)
	if err != nil {
		_ = cmd.Process.Kill()
		return
	}
	_ = syscall.Kill(-pgid, syscall.SIGKILL)
}

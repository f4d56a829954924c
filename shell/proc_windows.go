//go:build windows

package shell

import "os/exec"

func shellInvocation(command string) (string, []string) {
	return "powershell", []string{"-NoProfile", "-Command", command}
}

func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

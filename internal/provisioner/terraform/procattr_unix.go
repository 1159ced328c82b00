//go:build !windows

package terraform

import (
	"os/exec"
	"syscall"
)

// setProcessGroup runs terraform in its own process group so cancellation
// reaches the provider plugins too. SIGTERM first; exec escalates to SIGKILL
// after WaitDelay.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
}

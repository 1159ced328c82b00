//go:build windows

package terraform

import "os/exec"

func setProcessGroup(cmd *exec.Cmd) {}

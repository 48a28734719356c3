// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

package sandbox

import (
	"os/exec"
	"syscall"
)

// setProcAttrs puts the child in its own process group so the finalizer
// can kill any grandchildren the runtime spawns, not just the runtime.
func setProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup sends SIGKILL to the child's whole process group.
// Reaping stays with the caller: it must still wait on the command.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	// Negative pid addresses the group. Fall back to the single process
	// if the group signal fails (already exited, or Setpgid lost a race).
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}
}

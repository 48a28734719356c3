// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

package sandbox

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// setProcAttrs creates the child in a new process group so it can be
// signaled independently of the parent console.
func setProcAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: windows.CREATE_NEW_PROCESS_GROUP}
}

// killProcessGroup terminates the child process. Windows has no group
// SIGKILL; Kill terminates the process object directly and the caller's
// Wait performs the reap.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}

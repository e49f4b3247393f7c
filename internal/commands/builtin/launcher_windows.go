// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

package builtin

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// configureProcess maps ProcessFlags to CreateProcess creation flags.
// FlagConsole wins over FlagHidden.
func configureProcess(cmd *exec.Cmd, flags ProcessFlags) {
	attr := &syscall.SysProcAttr{}
	switch {
	case flags&FlagConsole != 0:
		attr.CreationFlags |= windows.CREATE_NEW_CONSOLE
	case flags&FlagHidden != 0:
		attr.HideWindow = true
		attr.CreationFlags |= windows.CREATE_NO_WINDOW
	}
	if flags&FlagWait == 0 {
		attr.CreationFlags |= windows.CREATE_NEW_PROCESS_GROUP
	}
	cmd.SysProcAttr = attr
}

func folderCommand(path string) *exec.Cmd {
	return exec.Command("explorer", path)
}

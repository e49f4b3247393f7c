// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

package builtin

import (
	"os/exec"
	"runtime"
)

// configureProcess is a no-op: window flags only exist on Windows.
func configureProcess(cmd *exec.Cmd, flags ProcessFlags) {}

func folderCommand(path string) *exec.Cmd {
	if runtime.GOOS == "darwin" {
		return exec.Command("open", path)
	}
	return exec.Command("xdg-open", path)
}

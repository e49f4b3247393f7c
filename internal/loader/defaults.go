// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package loader

import (
	"fmt"
	"os"

	"github.com/miere43/cmdbar/internal/util"
)

// DefaultCommands is the commands file written by `cmdbar init`.
const DefaultCommands = `# cmdbar commands file
#
# Each [section] defines one command. The section name picks the command
# type; "name" is what you type to run it. Lines starting with # or ; are
# comments.

[directory]
name = home
path = ~
description = Open the home folder

[program]
name = edit
path = notepad.exe
description = Open a text editor

# [program]
# name = build
# path = make
# args = "all" "-j4"
# dir = ~/src/project
# flags = console, wait
`

// ErrExists is returned by WriteDefault when the file exists and force is
// false.
var ErrExists = os.ErrExist

// WriteDefault writes DefaultCommands to path. An existing file is only
// replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force && util.FileExists(path) {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	return util.AtomicWriteFile(path, []byte(DefaultCommands), 0644)
}

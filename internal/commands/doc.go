// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the command model of the shell.
//
// A Registry owns named Command instances and, separately, the Info
// descriptors the loader uses to build commands from a commands file.
//
// # Key Types
//
//   - Command: Named, executable entry; concrete commands embed Base
//   - Registry: Owns command instances and factory descriptors
//   - Info: Factory descriptor mapping a section name to a constructor
//   - State: Per-evaluation execution state and error message
//   - Completer: Case-insensitive command name completion
//
// # Usage
//
// Register a command and find it again:
//
//	reg := commands.NewRegistry(logger)
//	if err := reg.RegisterCommand(cmd); err != nil {
//	    return err
//	}
//	cmd := reg.Find("open_dir")
//
// Complete a partially typed name:
//
//	completions := commands.NewCompleter(reg).Complete("op")
package commands

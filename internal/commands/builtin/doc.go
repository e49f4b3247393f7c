// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package builtin provides the commands cmdbar ships with.
//
// # Factories
//
// Commands files build commands through two factories:
//
//   - program: RunProgram, starts an executable (path, args, dir, flags)
//   - directory: OpenDirectory, opens a folder in the file manager (path)
//
// # Programmatic Commands
//
//   - quit: Ask the front end to exit
//   - help: List commands, or describe one
//   - echo: Print the arguments
//
// Process creation and folder opening go through the Launcher interface so
// tests can observe them; OSLauncher is the real implementation.
//
// # Usage
//
//	env := builtin.Env{Heap: pools.Heap, Launcher: builtin.NewOSLauncher(logger)}
//	if err := builtin.RegisterInfos(reg, env); err != nil {
//	    return err
//	}
//	if err := builtin.RegisterCommands(reg, pools.Heap); err != nil {
//	    return err
//	}
package builtin

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the cmdbar command line and its interactive front
// ends.
//
// # Key Types
//
//   - App: Owns pools, registry, loader, history, shell and watcher
//   - Streams: Standard streams the command tree reads and writes
//
// # Usage
//
//	func main() {
//	    os.Exit(cli.Execute())
//	}
//
// # Commands Overview
//
//   - cmdbar: Interactive session (line mode or command bar), or batch
//     evaluation when stdin is not a terminal
//   - eval: Evaluate one line
//   - check: Validate a commands file
//   - init: Write a default config and commands file
//   - list: List registered commands
//   - config: Print the effective configuration
//   - version: Print version information
//
// Exit codes: 0 success, 1 command failed, 2 usage, 3 config or commands
// file, 7 command not found.
package cli

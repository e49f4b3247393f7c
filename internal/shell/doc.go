// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell implements the evaluate pipeline: an input line is split
// into quote-aware tokens, the first token is looked up case-insensitively
// in a commands.Registry and the command runs with the remaining tokens.
//
// # Key Types
//
//   - Shell: Evaluates lines against a registry
//   - Error: Classified evaluation failure (see Kind)
//
// # Tokenizing
//
// Whitespace outside double quotes separates tokens. Quotes are removed and
// always end the current token, so a quoted segment cannot be glued to
// unquoted text. Tokens are views into the input line.
//
//	shell.TokenizeString(`run "C:\Program Files\x.exe" --flag`)
//	// ["run", "C:\Program Files\x.exe", "--flag"]
//
// # Usage
//
//	sh, err := shell.New(shell.Options{Registry: reg, Pools: pools})
//	if !sh.EvaluateString("open_dir docs") {
//	    fmt.Println(sh.ErrorMessage())
//	}
//	sh.EndRoundTrip()
package shell

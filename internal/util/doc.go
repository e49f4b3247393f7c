// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small file and text helpers shared by the CLI, the
// loader and the config layer.
//
// # Key Functions
//
// File Operations:
//   - ReadTextFile: Whole-file read with a size cap and BOM stripping
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - ExpandHome: "~" expansion for paths read from config
//
// Display Width:
//   - StringWidth, TruncateWidth, PadRight: Cell-accurate sizing
//   - Columns: Aligned multi-column listings
//
// # Usage
//
//	data, err := util.ReadTextFile(path)
//	err = util.AtomicWriteFile(path, data, 0644)
//	fmt.Print(util.Columns(rows, 2))
package util

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps a small ring of previously evaluated lines for
// recall with the arrow keys.
//
// # Usage
//
//	h := history.New(pools.Heap, 16)
//	_ = h.SaveEntry(text.Wrap("open_dir docs"))
//	line, ok := h.GetPrevEntry()
package history

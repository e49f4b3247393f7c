// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package text provides the String type used throughout cmdbar instead of
// Go strings wherever ownership matters.
//
// A String is a view (Wrap, View, Trimmed) or owned (Clone, Format). Owned
// strings remember their allocator, so Dispose always releases through the
// right one, and disposing a view is reported instead of corrupting memory.
//
// # Usage
//
//	name, err := text.Wrap("Open_Dir").Clone(heap)
//	if err != nil {
//	    return err
//	}
//	defer name.Dispose()
//
//	if name.Equals(text.Wrap("open_dir"), text.CaseInsensitive) {
//	    // ...
//	}
package text

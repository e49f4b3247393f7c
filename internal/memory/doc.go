// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package memory provides the allocators every other cmdbar component
// allocates through.
//
// There are two strategies behind the single Allocator interface:
//
//   - Heap: delegates to the Go heap, keeps live-block accounting and can be
//     given a byte limit to model exhaustion (allocations then return nil).
//   - Arena: bump-allocates from one fixed buffer and escalates requests that
//     do not fit to "unfit" blocks taken from a heap delegate.
//
// # Key Types
//
//   - Allocator: Alloc / Dealloc / Realloc capability
//   - Heap: general purpose allocator
//   - Arena: transient bump allocator with overflow
//   - Pools: the heap + transient arena pair owned by the application
//
// # Usage
//
//	pools := memory.NewPools(memory.PoolOptions{TransientSize: 64 << 10})
//	defer pools.Close()
//
//	buf := pools.Transient.Alloc(128)
//	// ... use buf until the next round-trip ...
//	pools.Transient.Clear()
//
// Nothing in this package is safe for concurrent use except Heap, which
// serializes its bookkeeping.
package memory

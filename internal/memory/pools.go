// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package memory

import "go.uber.org/zap"

// DefaultTransientSize is the bump buffer size of the transient arena.
const DefaultTransientSize = 64 << 10

// PoolOptions configures NewPools.
type PoolOptions struct {
	TransientSize int         // bump buffer of the transient arena, 0 = DefaultTransientSize
	HeapLimit     int64       // live-byte cap of the heap, 0 = unlimited
	Logger        *zap.Logger // nil = no logging
}

// Pools is the pair of allocators the application owns for its lifetime: a
// general heap and a transient arena that is cleared once per UI round-trip.
// Both are created here and torn down by Close; nothing is process-global.
type Pools struct {
	Heap      *Heap
	Transient *Arena
}

// NewPools creates the heap and the transient arena. The arena's bump buffer
// and overflow blocks come from the heap so a single Stats call accounts for
// everything.
func NewPools(opts PoolOptions) *Pools {
	size := opts.TransientSize
	if size <= 0 {
		size = DefaultTransientSize
	}
	heap := NewHeap(opts.HeapLimit)
	return &Pools{
		Heap:      heap,
		Transient: NewArena(size, WithDelegate(heap), WithLogger(opts.Logger)),
	}
}

// Close disposes the transient arena. Heap blocks still live after Close are
// leaks owned by whoever allocated them.
func (p *Pools) Close() {
	if p.Transient != nil {
		p.Transient.Dispose()
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package memory

import "sync"

// Heap is the standard allocator. It delegates to the Go heap and records
// every live block so that accounting (and leak checks in tests) stay exact.
// Live blocks stay referenced until Dealloc, so a block that is never
// released is a real leak, not something the collector quietly reclaims.
type Heap struct {
	mu    sync.Mutex
	limit int64
	live  map[uintptr][]byte
	stats Stats
}

// NewHeap creates a heap allocator. A positive limit caps the number of live
// bytes; allocations past the cap return nil the way an exhausted system heap
// would.
func NewHeap(limit int64) *Heap {
	return &Heap{
		limit: limit,
		live:  make(map[uintptr][]byte),
	}
}

// Alloc returns a zeroed block of exactly size bytes, or nil.
func (h *Heap) Alloc(size int) []byte {
	if size <= 0 {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.limit > 0 && h.stats.LiveBytes+int64(size) > h.limit {
		h.stats.Failures++
		return nil
	}

	block := make([]byte, size)
	h.live[blockAddr(block)] = block
	h.stats.LiveBlocks++
	h.stats.LiveBytes += int64(size)
	h.stats.TotalAllocs++
	return block
}

// Dealloc releases a block previously returned by Alloc. Blocks this heap did
// not hand out are ignored.
func (h *Heap) Dealloc(block []byte) {
	if cap(block) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	addr := blockAddr(block)
	owned, ok := h.live[addr]
	if !ok {
		return
	}
	delete(h.live, addr)
	h.stats.LiveBlocks--
	h.stats.LiveBytes -= int64(len(owned))
}

// Realloc resizes a block by allocating, copying and releasing.
func (h *Heap) Realloc(block []byte, size int) []byte {
	return reallocCopy(h, block, size)
}

// Owns reports whether block is a live allocation of this heap.
func (h *Heap) Owns(block []byte) bool {
	if cap(block) == 0 {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.live[blockAddr(block)]
	return ok
}

// Stats returns a snapshot of the heap accounting.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

// SetLimit changes the live-byte cap. Zero removes it.
func (h *Heap) SetLimit(limit int64) {
	h.mu.Lock()
	h.limit = limit
	h.mu.Unlock()
}

var _ Allocator = (*Heap)(nil)

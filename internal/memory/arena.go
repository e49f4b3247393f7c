// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package memory

import "go.uber.org/zap"

// =============================================================================
// ARENA
// =============================================================================

// unfitBlock is an overflow allocation that did not fit in the bump buffer.
// The list is intrusive: every block links to the one allocated before it.
type unfitBlock struct {
	prev *unfitBlock
	data []byte
}

// ArenaStats describes the arena's bump buffer and overflow list.
type ArenaStats struct {
	Capacity    int   // size of the bump buffer
	Used        int   // bytes consumed from the bump buffer, including padding
	UnfitBlocks int   // live overflow blocks
	UnfitBytes  int64 // bytes held by overflow blocks
	Overflows   int64 // allocations escalated to the delegate since creation
}

// Arena bump-allocates from a fixed buffer [0, len(buf)) with a cursor.
// Requests that do not fit before the end of the buffer are served by the
// delegate allocator and tracked as unfit blocks, so from the caller's point
// of view the arena only fails when the delegate does.
//
// Invariant: 0 <= current <= len(buf). After Dispose the buffer is nil and
// current is 0.
//
// The arena hands out raw zeroed storage and never runs finalizers. Any block
// it returned becomes invalid at the next Clear or Dispose.
type Arena struct {
	delegate Allocator
	logger   *zap.Logger
	align    int

	buf     []byte
	current int
	last    int // start of the most recent bump block, -1 if none

	unfit      *unfitBlock
	unfitCount int
	unfitBytes int64
	overflows  int64
}

// ArenaOption configures an Arena.
type ArenaOption func(*Arena)

// WithDelegate sets the allocator used for the bump buffer and for unfit
// blocks. Defaults to a private unlimited Heap.
func WithDelegate(a Allocator) ArenaOption {
	return func(ar *Arena) { ar.delegate = a }
}

// WithAlignment sets the bump alignment. Must be a power of two.
func WithAlignment(align int) ArenaOption {
	return func(ar *Arena) {
		if align > 0 && align&(align-1) == 0 {
			ar.align = align
		}
	}
}

// WithLogger attaches a logger used for overflow diagnostics.
func WithLogger(l *zap.Logger) ArenaOption {
	return func(ar *Arena) {
		if l != nil {
			ar.logger = l
		}
	}
}

// NewArena creates an arena and sizes its buffer. A size of 0 creates an arena
// with no bump space in which every allocation is an unfit block.
func NewArena(size int, opts ...ArenaOption) *Arena {
	a := &Arena{
		align:  DefaultAlignment,
		logger: zap.NewNop(),
		last:   -1,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.delegate == nil {
		a.delegate = NewHeap(0)
	}
	a.SetSize(size)
	return a
}

// SetSize replaces the bump buffer with a new one of the given size. The old
// buffer and every unfit block are released first.
func (a *Arena) SetSize(size int) {
	a.Dispose()
	if size <= 0 {
		return
	}
	a.buf = a.delegate.Alloc(size)
}

// Alloc returns size zeroed bytes from the bump buffer, or an unfit block from
// the delegate when the buffer is exhausted.
func (a *Arena) Alloc(size int) []byte {
	if size <= 0 {
		return nil
	}

	start := alignUp(a.current, a.align)
	if a.buf != nil && start+size <= len(a.buf) {
		block := a.buf[start : start+size : start+size]
		clear(block)
		a.last = start
		a.current = start + size
		return block
	}

	return a.allocUnfit(size)
}

func (a *Arena) allocUnfit(size int) []byte {
	data := a.delegate.Alloc(size)
	if data == nil {
		return nil
	}
	a.unfit = &unfitBlock{prev: a.unfit, data: data}
	a.unfitCount++
	a.unfitBytes += int64(size)
	a.overflows++

	a.logger.Debug("arena overflow",
		zap.Int("size", size),
		zap.Int("capacity", len(a.buf)),
		zap.Int("used", a.current),
		zap.Int("unfit_blocks", a.unfitCount))
	return data
}

// Dealloc releases a block. Bump blocks are only reclaimed when they are the
// most recent allocation; everything else in the buffer waits for Clear.
// Unfit blocks are unlinked and returned to the delegate immediately.
func (a *Arena) Dealloc(block []byte) {
	if cap(block) == 0 {
		return
	}
	if off, ok := a.bumpOffset(block); ok {
		if off == a.last {
			a.current = off
			a.last = -1
		}
		return
	}
	a.releaseUnfit(block)
}

// Realloc grows or shrinks a block. The most recent bump block is resized in
// place when the buffer has room.
func (a *Arena) Realloc(block []byte, size int) []byte {
	if block != nil && size > 0 {
		if off, ok := a.bumpOffset(block); ok && off == a.last && off+size <= len(a.buf) {
			if size > len(block) {
				clear(a.buf[off+len(block) : off+size])
			}
			a.current = off + size
			return a.buf[off : off+size : off+size]
		}
	}
	return reallocCopy(a, block, size)
}

// Clear makes the whole bump buffer available again and releases every unfit
// block to the delegate.
func (a *Arena) Clear() {
	a.current = 0
	a.last = -1
	a.freeUnfit()
}

// Dispose releases the bump buffer and all unfit blocks. The arena can be
// revived with SetSize.
func (a *Arena) Dispose() {
	a.freeUnfit()
	if a.buf != nil {
		a.delegate.Dealloc(a.buf)
	}
	a.buf = nil
	a.current = 0
	a.last = -1
}

// Stats returns a snapshot of the arena state.
func (a *Arena) Stats() ArenaStats {
	return ArenaStats{
		Capacity:    len(a.buf),
		Used:        a.current,
		UnfitBlocks: a.unfitCount,
		UnfitBytes:  a.unfitBytes,
		Overflows:   a.overflows,
	}
}

// Owns reports whether block was handed out by this arena and is still live.
func (a *Arena) Owns(block []byte) bool {
	if cap(block) == 0 {
		return false
	}
	if off, ok := a.bumpOffset(block); ok {
		return off < a.current
	}
	addr := blockAddr(block)
	for b := a.unfit; b != nil; b = b.prev {
		if blockAddr(b.data) == addr {
			return true
		}
	}
	return false
}

// bumpOffset returns the offset of block inside the bump buffer.
func (a *Arena) bumpOffset(block []byte) (int, bool) {
	if len(a.buf) == 0 {
		return 0, false
	}
	base := blockAddr(a.buf)
	addr := blockAddr(block)
	if addr < base || addr >= base+uintptr(len(a.buf)) {
		return 0, false
	}
	return int(addr - base), true
}

func (a *Arena) releaseUnfit(block []byte) {
	addr := blockAddr(block)
	var next *unfitBlock
	for b := a.unfit; b != nil; next, b = b, b.prev {
		if blockAddr(b.data) != addr {
			continue
		}
		if next == nil {
			a.unfit = b.prev
		} else {
			next.prev = b.prev
		}
		a.unfitCount--
		a.unfitBytes -= int64(len(b.data))
		a.delegate.Dealloc(b.data)
		return
	}
}

func (a *Arena) freeUnfit() {
	for b := a.unfit; b != nil; {
		prev := b.prev
		a.delegate.Dealloc(b.data)
		b.prev = nil
		b = prev
	}
	a.unfit = nil
	a.unfitCount = 0
	a.unfitBytes = 0
}

var _ Allocator = (*Arena)(nil)

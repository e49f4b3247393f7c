// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// HEAP TESTS
// =============================================================================

func TestHeap_AllocAccounting(t *testing.T) {
	h := NewHeap(0)

	a := h.Alloc(16)
	b := h.Alloc(32)
	require.Len(t, a, 16)
	require.Len(t, b, 32)

	st := h.Stats()
	assert.Equal(t, 2, st.LiveBlocks)
	assert.Equal(t, int64(48), st.LiveBytes)

	h.Dealloc(a)
	h.Dealloc(b)
	st = h.Stats()
	assert.Equal(t, 0, st.LiveBlocks)
	assert.Equal(t, int64(0), st.LiveBytes)
	assert.Equal(t, int64(2), st.TotalAllocs)
}

func TestHeap_ZeroSizeAndNil(t *testing.T) {
	h := NewHeap(0)

	assert.Nil(t, h.Alloc(0))
	assert.Nil(t, h.Alloc(-3))
	h.Dealloc(nil)
	assert.Equal(t, Stats{}, h.Stats())
}

func TestHeap_LimitReturnsNil(t *testing.T) {
	h := NewHeap(64)

	first := h.Alloc(48)
	require.NotNil(t, first)
	assert.Nil(t, h.Alloc(32), "allocation past the limit should fail")
	assert.Equal(t, int64(1), h.Stats().Failures)

	h.Dealloc(first)
	assert.NotNil(t, h.Alloc(32))
}

func TestHeap_DeallocForeignBlockIgnored(t *testing.T) {
	h := NewHeap(0)
	block := h.Alloc(8)

	h.Dealloc(make([]byte, 8))
	assert.Equal(t, 1, h.Stats().LiveBlocks)

	h.Dealloc(block)
	h.Dealloc(block)
	assert.Equal(t, 0, h.Stats().LiveBlocks)
}

func TestHeap_Realloc(t *testing.T) {
	h := NewHeap(0)

	block := h.Alloc(4)
	copy(block, "abcd")

	grown := h.Realloc(block, 8)
	require.Len(t, grown, 8)
	assert.Equal(t, "abcd", string(grown[:4]))
	assert.False(t, h.Owns(block))
	assert.True(t, h.Owns(grown))

	assert.Nil(t, h.Realloc(grown, 0))
	assert.Equal(t, 0, h.Stats().LiveBlocks)

	fresh := h.Realloc(nil, 3)
	assert.Len(t, fresh, 3)
}

func TestHeap_ReallocFailureKeepsOriginal(t *testing.T) {
	h := NewHeap(16)
	block := h.Alloc(10)

	assert.Nil(t, h.Realloc(block, 12))
	assert.True(t, h.Owns(block))
}

// =============================================================================
// ARENA TESTS
// =============================================================================

func TestArena_BumpAllocation(t *testing.T) {
	a := NewArena(64)

	x := a.Alloc(5)
	y := a.Alloc(7)
	require.Len(t, x, 5)
	require.Len(t, y, 7)

	st := a.Stats()
	assert.Equal(t, 64, st.Capacity)
	assert.Equal(t, 15, st.Used, "second block starts at the next 8-byte boundary")
	assert.Equal(t, 0, st.UnfitBlocks)
}

func TestArena_Alignment(t *testing.T) {
	a := NewArena(256, WithAlignment(16))

	for _, size := range []int{1, 3, 17, 9} {
		block := a.Alloc(size)
		off, ok := a.bumpOffset(block)
		require.True(t, ok)
		assert.Equal(t, 0, off%16, "size %d", size)
	}
}

func TestArena_OverflowBlocksDoNotAlias(t *testing.T) {
	heap := NewHeap(0)
	a := NewArena(32, WithDelegate(heap))

	var blocks [][]byte
	for i := 0; i < 10; i++ {
		b := a.Alloc(12)
		require.NotNil(t, b, "allocation %d", i)
		for j := range b {
			b[j] = byte(i)
		}
		blocks = append(blocks, b)
	}

	for i, b := range blocks {
		for _, v := range b {
			require.Equal(t, byte(i), v, "block %d was overwritten", i)
		}
	}

	st := a.Stats()
	assert.Equal(t, 8, st.UnfitBlocks)
	assert.Equal(t, int64(96), st.UnfitBytes)
}

func TestArena_DisposeReleasesEverything(t *testing.T) {
	heap := NewHeap(0)
	a := NewArena(32, WithDelegate(heap))

	for i := 0; i < 6; i++ {
		require.NotNil(t, a.Alloc(20))
	}
	assert.Greater(t, heap.Stats().LiveBlocks, 1)

	a.Dispose()

	assert.Equal(t, 0, heap.Stats().LiveBlocks)
	assert.Equal(t, int64(0), heap.Stats().LiveBytes)
	assert.Equal(t, ArenaStats{Overflows: 5}, a.Stats())
}

// Clear must not leak blocks that overflowed the buffer.
func TestArena_ClearReleasesUnfitBlocks(t *testing.T) {
	heap := NewHeap(0)
	a := NewArena(16, WithDelegate(heap))

	require.NotNil(t, a.Alloc(16))
	for i := 0; i < 4; i++ {
		require.NotNil(t, a.Alloc(100))
	}
	require.Equal(t, int64(16+400), heap.Stats().LiveBytes)

	a.Clear()

	st := heap.Stats()
	assert.Equal(t, 1, st.LiveBlocks, "only the bump buffer stays live")
	assert.Equal(t, int64(16), st.LiveBytes)
	assert.Equal(t, 0, a.Stats().Used)
	assert.Equal(t, 0, a.Stats().UnfitBlocks)
}

func TestArena_ClearReusesBufferZeroed(t *testing.T) {
	a := NewArena(16)

	first := a.Alloc(8)
	copy(first, "dirtydat")
	a.Clear()

	second := a.Alloc(8)
	assert.Equal(t, make([]byte, 8), second)
}

func TestArena_DeallocLastBumpBlockRollsBack(t *testing.T) {
	a := NewArena(64)

	a.Alloc(8)
	b := a.Alloc(8)
	require.Equal(t, 16, a.Stats().Used)

	a.Dealloc(b)
	assert.Equal(t, 8, a.Stats().Used)

	// Only one level of rollback is tracked.
	a.Dealloc(b)
	assert.Equal(t, 8, a.Stats().Used)
}

func TestArena_DeallocUnfitBlock(t *testing.T) {
	heap := NewHeap(0)
	a := NewArena(8, WithDelegate(heap))

	x := a.Alloc(32)
	y := a.Alloc(32)
	z := a.Alloc(32)
	require.Equal(t, 3, a.Stats().UnfitBlocks)

	a.Dealloc(y)
	assert.Equal(t, 2, a.Stats().UnfitBlocks)
	assert.True(t, a.Owns(x))
	assert.False(t, a.Owns(y))
	assert.True(t, a.Owns(z))

	a.Dealloc(z)
	a.Dealloc(x)
	assert.Equal(t, 0, a.Stats().UnfitBlocks)
	assert.Equal(t, 1, heap.Stats().LiveBlocks)
}

func TestArena_ReallocInPlace(t *testing.T) {
	a := NewArena(64)

	block := a.Alloc(4)
	copy(block, "abcd")
	grown := a.Realloc(block, 12)

	require.Len(t, grown, 12)
	assert.Equal(t, "abcd", string(grown[:4]))
	assert.Equal(t, 12, a.Stats().Used)
	assert.Equal(t, 0, a.Stats().UnfitBlocks)
}

func TestArena_ReallocEscalates(t *testing.T) {
	a := NewArena(16)

	block := a.Alloc(8)
	copy(block, "12345678")
	grown := a.Realloc(block, 64)

	require.Len(t, grown, 64)
	assert.Equal(t, "12345678", string(grown[:8]))
	assert.Equal(t, 1, a.Stats().UnfitBlocks)
}

func TestArena_FailsOnlyWhenDelegateFails(t *testing.T) {
	heap := NewHeap(48)
	a := NewArena(16, WithDelegate(heap))

	require.NotNil(t, a.Alloc(16))
	require.NotNil(t, a.Alloc(32))
	assert.Nil(t, a.Alloc(1))
}

func TestArena_SetSizeReplacesBuffer(t *testing.T) {
	heap := NewHeap(0)
	a := NewArena(16, WithDelegate(heap))
	a.Alloc(64)

	a.SetSize(128)

	assert.Equal(t, 128, a.Stats().Capacity)
	assert.Equal(t, 0, a.Stats().UnfitBlocks)
	assert.Equal(t, int64(128), heap.Stats().LiveBytes)
}

func TestPools_CloseReleasesTransient(t *testing.T) {
	p := NewPools(PoolOptions{TransientSize: 32})
	p.Transient.Alloc(16)
	p.Transient.Alloc(64)
	require.Equal(t, 2, p.Heap.Stats().LiveBlocks)

	p.Close()
	assert.Equal(t, 0, p.Heap.Stats().LiveBlocks)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miere43/cmdbar/internal/memory"
)

func TestFormat_ExactAllocation(t *testing.T) {
	heap := memory.NewHeap(0)

	s, err := Format(heap, "command %q not found (%d)", Wrap("foo"), 7)
	require.NoError(t, err)
	assert.Equal(t, `command "foo" not found (7)`, s.String())
	assert.Equal(t, int64(s.Len()), heap.Stats().LiveBytes)

	require.NoError(t, s.Dispose())
}

func TestFormatCString(t *testing.T) {
	heap := memory.NewHeap(0)

	s, err := FormatCString(heap, "%s-%s", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a-b", s.String())
	assert.Equal(t, []byte("a-b\x00"), s.CString())
	assert.Equal(t, int64(4), heap.Stats().LiveBytes)
}

func TestFormat_Empty(t *testing.T) {
	heap := memory.NewHeap(0)

	s, err := Format(heap, "")
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, int64(0), heap.Stats().TotalAllocs)
}

func TestFormat_AllocationFailure(t *testing.T) {
	heap := memory.NewHeap(8)

	s, err := Format(heap, "%s", "much longer than eight bytes")
	assert.ErrorIs(t, err, memory.ErrOutOfMemory)
	assert.True(t, s.IsEmpty())
}

// flaky renders differently on every call.
type flaky struct{ calls int }

func (f *flaky) String() string {
	f.calls++
	if f.calls == 1 {
		return "short"
	}
	return "considerably longer"
}

func TestFormat_MismatchDetected(t *testing.T) {
	heap := memory.NewHeap(0)

	s, err := Format(heap, "%s", &flaky{})
	assert.ErrorIs(t, err, ErrFormatMismatch)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, heap.Stats().LiveBlocks, "mismatched output must be released")
}

func TestFormat_IntoArena(t *testing.T) {
	arena := memory.NewArena(16)

	s, err := Format(arena, "%s", "this does not fit in sixteen bytes")
	require.NoError(t, err)
	assert.Equal(t, "this does not fit in sixteen bytes", s.String())
	assert.Equal(t, 1, arena.Stats().UnfitBlocks)
}

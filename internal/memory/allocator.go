// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package memory

import (
	"errors"
	"unsafe"
)

// ErrOutOfMemory is returned by callers that translate a nil block into an
// error. Allocators themselves never return errors.
var ErrOutOfMemory = errors.New("memory: allocation failed")

// DefaultAlignment is the alignment applied to arena bump allocations.
const DefaultAlignment = 8

// Allocator hands out raw byte storage.
//
// Alloc(0) returns nil, which callers treat as "no storage needed" rather than
// failure. Dealloc(nil) is a no-op. Realloc behaves like Alloc for a nil block
// and like Dealloc for a zero size; when it fails it returns nil and leaves
// the original block untouched.
type Allocator interface {
	Alloc(size int) []byte
	Dealloc(block []byte)
	Realloc(block []byte, size int) []byte
}

// Stats is a snapshot of allocator accounting.
type Stats struct {
	LiveBlocks  int   // blocks handed out and not yet released
	LiveBytes   int64 // bytes in those blocks
	TotalAllocs int64 // successful allocations over the allocator lifetime
	Failures    int64 // allocations that returned nil
}

// blockAddr returns the address of the first byte of block's backing array.
func blockAddr(block []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(block)))
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// reallocCopy is the generic realloc path: allocate, copy, release.
func reallocCopy(a Allocator, block []byte, size int) []byte {
	if block == nil {
		return a.Alloc(size)
	}
	if size <= 0 {
		a.Dealloc(block)
		return nil
	}
	next := a.Alloc(size)
	if next == nil {
		return nil
	}
	copy(next, block)
	a.Dealloc(block)
	return next
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"bytes"
	"errors"
	"unsafe"

	"golang.org/x/text/cases"

	"github.com/miere43/cmdbar/internal/memory"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotOwned is returned when disposing a view.
	ErrNotOwned = errors.New("text: string does not own its storage")

	// ErrFormatMismatch is returned when the write pass of Format produced a
	// different number of bytes than the measuring pass.
	ErrFormatMismatch = errors.New("text: formatted length differs from measured length")
)

// =============================================================================
// STRING
// =============================================================================

// Case selects the comparison rule for Equals and StartsWith.
type Case int

const (
	CaseSensitive Case = iota
	CaseInsensitive
)

// String is a byte string with explicit ownership.
//
// A String is either a view, which borrows storage it must never release, or
// owned, in which case it records the allocator its storage came from and
// must be released with Dispose. The zero value is the canonical empty string.
// Views created from an owned String stay valid only until that String is
// disposed.
type String struct {
	data  []byte
	owner memory.Allocator
	term  bool // backing storage carries a trailing NUL after data
}

// Empty is the canonical empty string.
var Empty String

// Wrap returns a view of s. No bytes are copied; the view must not be
// modified.
func Wrap(s string) String {
	if len(s) == 0 {
		return Empty
	}
	return String{data: unsafe.Slice(unsafe.StringData(s), len(s))}
}

// WrapBytes returns a view of b.
func WrapBytes(b []byte) String {
	if len(b) == 0 {
		return Empty
	}
	return String{data: b}
}

// Len returns the number of bytes.
func (s String) Len() int { return len(s.data) }

// IsEmpty reports whether s is the canonical empty string. An empty string
// is never backed by an allocation.
func (s String) IsEmpty() bool { return len(s.data) == 0 }

// Owned reports whether s owns its storage.
func (s String) Owned() bool { return s.owner != nil }

// Allocator returns the allocator that owns s, or nil for views.
func (s String) Allocator() memory.Allocator { return s.owner }

// Bytes returns the content. The slice aliases s and must not be retained
// past Dispose.
func (s String) Bytes() []byte { return s.data }

// String copies the content into a Go string.
func (s String) String() string { return string(s.data) }

// At returns the byte at index i.
func (s String) At(i int) byte { return s.data[i] }

// CString returns the content followed by a NUL byte when s was created by
// CloneCString or FormatCString, and nil otherwise.
func (s String) CString() []byte {
	if !s.term {
		return nil
	}
	return s.data[:len(s.data)+1]
}

// =============================================================================
// COMPARISON
// =============================================================================

// Equals compares two strings. Two empty strings are always equal; otherwise
// lengths must match and the content must match under the case rule.
func (s String) Equals(other String, c Case) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return s.IsEmpty() && other.IsEmpty()
	}
	if len(s.data) != len(other.data) {
		return false
	}
	if c == CaseSensitive {
		return bytes.Equal(s.data, other.data)
	}
	return foldEqual(s.data, other.data)
}

// EqualsString is Equals against a Go string.
func (s String) EqualsString(other string, c Case) bool {
	return s.Equals(Wrap(other), c)
}

// StartsWith reports whether s begins with prefix. An empty prefix, or one
// longer than s, never matches.
func (s String) StartsWith(prefix String, c Case) bool {
	if prefix.IsEmpty() || len(prefix.data) > len(s.data) {
		return false
	}
	head := s.data[:len(prefix.data)]
	if c == CaseSensitive {
		return bytes.Equal(head, prefix.data)
	}
	return foldEqual(head, prefix.data)
}

// foldEqual compares under full Unicode case folding. ASCII input takes the
// fast path.
func foldEqual(a, b []byte) bool {
	if isASCII(a) && isASCII(b) {
		return bytes.EqualFold(a, b)
	}
	caser := cases.Fold()
	return caser.String(string(a)) == caser.String(string(b))
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

// IndexOf returns the index of the first ch, or -1.
func (s String) IndexOf(ch byte) int {
	for i := 0; i < len(s.data); i++ {
		if s.data[i] == ch {
			return i
		}
	}
	return -1
}

// LastIndexOf returns the index of the last ch, or -1. Safe on empty strings.
func (s String) LastIndexOf(ch byte) int {
	for i := len(s.data); i > 0; i-- {
		if s.data[i-1] == ch {
			return i - 1
		}
	}
	return -1
}

// =============================================================================
// VIEWS
// =============================================================================

// View returns a view of count bytes starting at index. Both are clamped to
// the bounds of s; the result never allocates and never owns storage.
func (s String) View(index, count int) String {
	if index < 0 {
		index = 0
	}
	if index >= len(s.data) || count <= 0 {
		return Empty
	}
	if count > len(s.data)-index {
		count = len(s.data) - index
	}
	return String{data: s.data[index : index+count : index+count]}
}

// ViewFrom returns a view from index to the end.
func (s String) ViewFrom(index int) String {
	return s.View(index, len(s.data))
}

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

// Trimmed returns a view without leading and trailing spaces and tabs.
func (s String) Trimmed() String {
	return s.TrimmedLeft().TrimmedRight()
}

// TrimmedLeft returns a view without leading spaces and tabs.
func (s String) TrimmedLeft() String {
	i := 0
	for i < len(s.data) && isBlank(s.data[i]) {
		i++
	}
	return s.ViewFrom(i)
}

// TrimmedRight returns a view without trailing spaces and tabs.
func (s String) TrimmedRight() String {
	n := len(s.data)
	for n > 0 && isBlank(s.data[n-1]) {
		n--
	}
	return s.View(0, n)
}

// =============================================================================
// OWNERSHIP
// =============================================================================

// Clone copies s into storage from a. On allocation failure it returns the
// canonical empty string and memory.ErrOutOfMemory. Cloning an empty string
// allocates nothing.
func (s String) Clone(a memory.Allocator) (String, error) {
	if s.IsEmpty() {
		return Empty, nil
	}
	buf := a.Alloc(len(s.data))
	if buf == nil {
		return Empty, memory.ErrOutOfMemory
	}
	copy(buf, s.data)
	return String{data: buf, owner: a}, nil
}

// CloneCString is Clone with one extra byte holding a NUL terminator, for
// handing to APIs that expect C strings.
func (s String) CloneCString(a memory.Allocator) (String, error) {
	buf := a.Alloc(len(s.data) + 1)
	if buf == nil {
		return Empty, memory.ErrOutOfMemory
	}
	copy(buf, s.data)
	buf[len(s.data)] = 0
	return String{data: buf[:len(s.data)], owner: a, term: true}, nil
}

// Dispose releases owned storage through the allocator that produced it and
// resets s to empty. Disposing the empty string is a no-op; disposing a view
// returns ErrNotOwned and leaves s untouched.
func (s *String) Dispose() error {
	if s.owner == nil {
		if s.IsEmpty() {
			return nil
		}
		return ErrNotOwned
	}
	backing := s.data
	if s.term {
		backing = s.data[:len(s.data)+1]
	}
	s.owner.Dealloc(backing)
	*s = Empty
	return nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package text

import (
	"fmt"

	"github.com/miere43/cmdbar/internal/memory"
)

// countWriter measures output without storing it.
type countWriter struct{ n int }

func (w *countWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}

// fixedWriter writes into a preallocated buffer and refuses to grow it.
type fixedWriter struct {
	buf      []byte
	n        int
	overflow int
}

func (w *fixedWriter) Write(p []byte) (int, error) {
	room := len(w.buf) - w.n
	if len(p) > room {
		w.n += copy(w.buf[w.n:], p[:room])
		w.overflow += len(p) - room
		return room, ErrFormatMismatch
	}
	w.n += copy(w.buf[w.n:], p)
	return len(p), nil
}

// Format renders a printf-style format into storage from a. It measures the
// output first, allocates exactly that many bytes and then writes; if the two
// passes disagree the storage is released and ErrFormatMismatch returned.
// String arguments format as their content.
func Format(a memory.Allocator, format string, args ...any) (String, error) {
	return formatInto(a, false, format, args...)
}

// FormatCString is Format with a trailing NUL terminator.
func FormatCString(a memory.Allocator, format string, args ...any) (String, error) {
	return formatInto(a, true, format, args...)
}

func formatInto(a memory.Allocator, term bool, format string, args ...any) (String, error) {
	var measure countWriter
	fmt.Fprintf(&measure, format, args...)

	size := measure.n
	if term {
		size++
	}
	if size == 0 {
		return Empty, nil
	}

	buf := a.Alloc(size)
	if buf == nil {
		return Empty, memory.ErrOutOfMemory
	}

	w := fixedWriter{buf: buf[:measure.n]}
	fmt.Fprintf(&w, format, args...)
	if written := w.n + w.overflow; written != measure.n {
		a.Dealloc(buf)
		return Empty, fmt.Errorf("%w: measured %d, wrote %d", ErrFormatMismatch, measure.n, written)
	}

	if term {
		buf[measure.n] = 0
	}
	return String{data: buf[:measure.n], owner: a, term: term}, nil
}

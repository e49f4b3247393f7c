// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"github.com/miere43/cmdbar/internal/memory"
	"github.com/miere43/cmdbar/internal/text"
)

// DefaultCapacity is the number of entries kept when no capacity is given.
const DefaultCapacity = 16

// History is a fixed-capacity, insertion-ordered buffer of previously
// evaluated lines. Index 0 is the oldest entry. Entries are owned clones;
// the getters hand out views that stay valid until the entry is evicted or
// the history is disposed.
//
// The read cursor moves with wraparound over the live entries, so walking
// backward past the oldest entry lands on the newest one.
type History struct {
	alloc    memory.Allocator
	entries  []text.String
	capacity int
	cursor   int
}

// New creates an empty history whose entries are cloned into alloc.
func New(alloc memory.Allocator, capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History{
		alloc:    alloc,
		entries:  make([]text.String, 0, capacity),
		capacity: capacity,
	}
}

// SaveEntry clones line into the history, evicting the oldest entry when the
// buffer is full, and points the cursor at the new entry. Empty lines are
// not saved. On allocation failure the history is left unchanged.
func (h *History) SaveEntry(line text.String) error {
	if line.IsEmpty() {
		return nil
	}
	entry, err := line.Clone(h.alloc)
	if err != nil {
		return err
	}

	if len(h.entries) == h.capacity {
		h.entries[0].Dispose()
		copy(h.entries, h.entries[1:])
		h.entries[len(h.entries)-1] = text.Empty
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, entry)
	h.ResetCursor()
	return nil
}

// GetPrevEntry returns the entry at the cursor and moves the cursor one step
// toward older entries. It returns false when the history is empty.
func (h *History) GetPrevEntry() (text.String, bool) {
	n := len(h.entries)
	if n == 0 {
		return text.Empty, false
	}
	entry := h.view(h.cursor)
	h.cursor = (h.cursor - 1 + n) % n
	return entry, true
}

// GetNextEntry returns the entry at the cursor and moves the cursor one step
// toward newer entries. It returns false when the history is empty.
func (h *History) GetNextEntry() (text.String, bool) {
	n := len(h.entries)
	if n == 0 {
		return text.Empty, false
	}
	entry := h.view(h.cursor)
	h.cursor = (h.cursor + 1) % n
	return entry, true
}

// ResetCursor points the cursor at the newest entry.
func (h *History) ResetCursor() {
	h.cursor = 0
	if n := len(h.entries); n > 0 {
		h.cursor = n - 1
	}
}

// Len returns the number of live entries.
func (h *History) Len() int { return len(h.entries) }

// Cap returns the capacity.
func (h *History) Cap() int { return h.capacity }

// At returns a view of entry i, oldest first.
func (h *History) At(i int) text.String { return h.view(i) }

// view returns a borrowed view of entry i so callers cannot dispose storage
// the buffer still owns.
func (h *History) view(i int) text.String {
	e := h.entries[i]
	return e.View(0, e.Len())
}

// Strings copies the entries into Go strings, oldest first.
func (h *History) Strings() []string {
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.String()
	}
	return out
}

// Dispose releases every entry.
func (h *History) Dispose() {
	for i := range h.entries {
		h.entries[i].Dispose()
	}
	h.entries = h.entries[:0]
	h.cursor = 0
}

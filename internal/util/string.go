// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// StringWidth returns the display width of s in terminal cells. East Asian
// wide characters count as 2.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth truncates s to at most maxWidth cells, ending with "..."
// when anything was cut.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Columns renders rows as left-aligned columns separated by gap spaces. The
// last column is not padded. Rows may have different lengths.
func Columns(rows [][]string, gap int) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	sep := strings.Repeat(" ", gap)
	var sb strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString(sep)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FitColumns is Columns with the last column truncated so every line fits in
// width cells. The last column keeps at least minLast cells even when that
// overflows width. A width of 0 or less disables truncation.
func FitColumns(rows [][]string, gap, width, minLast int) string {
	if width <= 0 {
		return Columns(rows, gap)
	}
	var widths []int
	for _, row := range rows {
		for i, cell := range row[:max(len(row)-1, 0)] {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	fitted := make([][]string, len(rows))
	for r, row := range rows {
		if len(row) == 0 {
			continue
		}
		used := 0
		for i := 0; i < len(row)-1; i++ {
			used += widths[i] + gap
		}
		avail := max(width-used, minLast)
		out := append([]string(nil), row...)
		out[len(out)-1] = TruncateWidth(out[len(out)-1], avail)
		fitted[r] = out
	}
	return Columns(fitted, gap)
}

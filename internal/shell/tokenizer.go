// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import "github.com/miere43/cmdbar/internal/text"

// =============================================================================
// TOKENIZER
// =============================================================================

type scanState int

const (
	scanning scanState = iota
	inQuotes
)

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// Tokenize splits line into arguments and appends them to dst.
//
// Unquoted whitespace separates tokens and runs of it never produce empty
// tokens. A double quote toggles quoting; quoted whitespace is kept and the
// quotes themselves are dropped. A quote always ends the token in progress,
// so `ab"cd"` yields two tokens. An unterminated quote still yields the text
// after it. There are no escape sequences.
//
// Tokens are views into line and are valid only as long as line is.
func Tokenize(line text.String, dst []text.String) []text.String {
	state := scanning
	start := -1

	emit := func(end int) {
		if start >= 0 && end > start {
			dst = append(dst, line.View(start, end-start))
		}
		start = -1
	}

	n := line.Len()
	for i := 0; i < n; i++ {
		c := line.At(i)
		switch state {
		case scanning:
			switch {
			case c == '"':
				emit(i)
				start = i + 1
				state = inQuotes
			case isSpace(c):
				emit(i)
			case start < 0:
				start = i
			}
		case inQuotes:
			if c == '"' {
				emit(i)
				state = scanning
			}
		}
	}
	emit(n)
	return dst
}

// TokenizeString is Tokenize for Go strings.
func TokenizeString(line string) []text.String {
	return Tokenize(text.Wrap(line), nil)
}

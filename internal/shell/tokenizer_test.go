// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/miere43/cmdbar/internal/text"
)

func tokens(line string) []string {
	var out []string
	for _, tok := range TokenizeString(line) {
		out = append(out, tok.String())
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"only blanks", "   ", nil},
		{"blanks of every kind", " \t\r\n ", nil},
		{"single word", "help", []string{"help"}},
		{"collapses runs", "  open_dir   docs  ", []string{"open_dir", "docs"}},
		{"tabs and newlines", "a\tb\nc\r\n", []string{"a", "b", "c"}},
		{
			"quoted path keeps spaces and backslashes",
			`run_app "C:\Program Files\x.exe" --flag`,
			[]string{"run_app", `C:\Program Files\x.exe`, "--flag"},
		},
		{"empty quotes emit nothing", `a "" b`, []string{"a", "b"}},
		{"quoted blanks are kept", `" "`, []string{" "}},
		{"quote splits word before", `ab"cd"`, []string{"ab", "cd"}},
		{"quote splits word after", `"ab"cd`, []string{"ab", "cd"}},
		{"unterminated quote emits partial", `open "my docs`, []string{"open", "my docs"}},
		{"lone quote", `"`, nil},
		{"non-ascii", "ünïcode 名前", []string{"ünïcode", "名前"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tokens(tc.input))
		})
	}
}

func TestTokenize_TokensAreViews(t *testing.T) {
	buf := []byte("echo hello")
	toks := Tokenize(text.WrapBytes(buf), nil)

	assert.Len(t, toks, 2)
	for _, tok := range toks {
		assert.False(t, tok.Owned())
	}

	buf[5] = 'j'
	assert.Equal(t, "jello", toks[1].String())
}

func TestTokenize_AppendsToDst(t *testing.T) {
	dst := make([]text.String, 0, 4)
	dst = Tokenize(text.Wrap("a b"), dst)
	dst = Tokenize(text.Wrap("c"), dst)
	assert.Len(t, dst, 3)
}

// Balanced-quote inputs split on unquoted whitespace only: rejoining the
// tokens of a line without quotes gives back its words.
func TestTokenize_UnquotedMatchesFields(t *testing.T) {
	inputs := []string{
		"a b c",
		"  leading and trailing  ",
		"x\ty\tz",
		"one",
	}
	for _, in := range inputs {
		want := strings.Fields(in)
		assert.Equal(t, want, tokens(in), "input %q", in)
	}
}

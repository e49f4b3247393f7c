// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// COMPLETION
// =============================================================================

// Completion is a single completion candidate.
type Completion struct {
	// Value to insert
	Value string

	// Description shown alongside
	Description string

	// Score for ranking (higher = better match)
	Score int
}

// Completer completes command names against a registry.
type Completer struct {
	registry *Registry
}

// NewCompleter creates a completer over registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns completions for the command name being typed in input.
// Only the first word is completed; once a space follows the name there is
// nothing to offer.
func (c *Completer) Complete(input string) []Completion {
	if c.registry == nil {
		return nil
	}
	input = strings.TrimLeft(input, " \t")
	if strings.ContainsAny(input, " \t\"") {
		return nil
	}
	return c.completeCommands(input)
}

// Line returns full-line candidates for liner's SetCompleter.
func (c *Completer) Line(input string) []string {
	completions := c.Complete(input)
	out := make([]string, 0, len(completions))
	for _, comp := range completions {
		out = append(out, comp.Value+" ")
	}
	return out
}

// completeCommands returns completions for command names.
func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion
	lower := strings.ToLower(partial)

	for _, cmd := range c.registry.All() {
		name := cmd.Name().String()
		if !strings.HasPrefix(strings.ToLower(name), lower) {
			continue
		}
		completions = append(completions, Completion{
			Value:       name,
			Description: DescriptionOf(cmd),
			Score:       calculateScore(name, partial),
		})
	}

	sortCompletions(completions)
	return completions
}

// CommonPrefix returns the longest prefix shared by every completion value,
// compared case-insensitively and reported in the first value's case.
func CommonPrefix(completions []Completion) string {
	if len(completions) == 0 {
		return ""
	}
	prefix := completions[0].Value
	for _, comp := range completions[1:] {
		n := 0
		for n < len(prefix) && n < len(comp.Value) &&
			lowerByte(prefix[n]) == lowerByte(comp.Value[n]) {
			n++
		}
		prefix = prefix[:n]
	}
	return prefix
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// calculateScore calculates a relevance score for a completion.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100

	// Exact match
	if value == partial {
		return score + 100
	}

	// Shorter completions rank higher
	score += 20 - len(value)
	return score
}

// sortCompletions sorts completions by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}

// =============================================================================
// COMPLETION STATE
// =============================================================================

// CompletionState holds the state for cycling through completions.
type CompletionState struct {
	// Original input before completion
	OriginalInput string

	// Current completions
	Completions []Completion

	// Selected index (-1 for none)
	Selected int
}

// NewCompletionState creates a new completion state.
func NewCompletionState() *CompletionState {
	return &CompletionState{Selected: -1}
}

// Update replaces the candidates and selects the first one.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.OriginalInput = input
	cs.Completions = completions
	cs.Selected = 0
}

// Active reports whether there are candidates to cycle through.
func (cs *CompletionState) Active() bool { return len(cs.Completions) > 0 }

// Next moves to the next completion.
func (cs *CompletionState) Next() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected = (cs.Selected + 1) % len(cs.Completions)
}

// Prev moves to the previous completion.
func (cs *CompletionState) Prev() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected--
	if cs.Selected < 0 {
		cs.Selected = len(cs.Completions) - 1
	}
}

// Accept returns the selected completion value, or empty if none selected.
func (cs *CompletionState) Accept() string {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		if len(cs.Completions) > 0 {
			return cs.Completions[0].Value
		}
		return ""
	}
	return cs.Completions[cs.Selected].Value
}

// Clear clears the completion state.
func (cs *CompletionState) Clear() {
	cs.OriginalInput = ""
	cs.Completions = nil
	cs.Selected = -1
}

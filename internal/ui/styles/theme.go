// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styles of the command bar.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout
	Width int

	// ==========================================================================
	// INPUT LINE
	// ==========================================================================

	Prompt      lipgloss.Style
	InputText   lipgloss.Style
	Placeholder lipgloss.Style

	// ==========================================================================
	// STATUS LINE
	// ==========================================================================

	StatusBar     lipgloss.Style
	StatusOK      lipgloss.Style
	StatusError   lipgloss.Style
	StatusRunning lipgloss.Style
	StatusHint    lipgloss.Style

	// ==========================================================================
	// COMPLETION LIST
	// ==========================================================================

	CompletionItem     lipgloss.Style
	CompletionSelected lipgloss.Style
	CompletionDesc     lipgloss.Style

	// ==========================================================================
	// OUTPUT
	// ==========================================================================

	Output lipgloss.Style
}

// NewTheme creates a theme for the detected terminal.
func NewTheme() *Theme {
	return NewThemeWithProfile(termenv.ColorProfile())
}

// NewThemeWithProfile creates a theme for a fixed color profile. termenv.Ascii
// produces unstyled output.
func NewThemeWithProfile(profile termenv.Profile) *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(t.ColorProfile)
	r.SetHasDarkBackground(t.IsDark)

	t.Prompt = r.NewStyle().Foreground(Purple).Bold(true)
	t.InputText = r.NewStyle().Foreground(TextPrimary)
	t.Placeholder = r.NewStyle().Foreground(TextMuted).Italic(true)

	t.StatusBar = r.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusOK = r.NewStyle().Foreground(Emerald)
	t.StatusError = r.NewStyle().Foreground(Rose).Bold(true)
	t.StatusRunning = r.NewStyle().Foreground(Amber)
	t.StatusHint = r.NewStyle().Foreground(TextMuted)

	t.CompletionItem = r.NewStyle().Foreground(Cyan).PaddingLeft(2)
	t.CompletionSelected = r.NewStyle().
		Foreground(Cyan).
		Background(SelectionBg).
		Bold(true).
		PaddingLeft(2)
	t.CompletionDesc = r.NewStyle().Foreground(TextSecondary)

	t.Output = r.NewStyle().Foreground(TextPrimary)
}

// SetWidth updates the width used to size the status line.
func (t *Theme) SetWidth(width int) {
	t.Width = width
	t.StatusBar = t.StatusBar.Width(width)
}

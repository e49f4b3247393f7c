// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bar

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/miere43/cmdbar/internal/commands"
	"github.com/miere43/cmdbar/internal/shell"
	"github.com/miere43/cmdbar/internal/text"
	"github.com/miere43/cmdbar/internal/ui/styles"
	"github.com/miere43/cmdbar/internal/util"
)

// maxOutputLines bounds the command output kept under the input line.
const maxOutputLines = 8

// =============================================================================
// MESSAGES
// =============================================================================

// ReloadedMsg reports that the commands file was reloaded.
type ReloadedMsg struct {
	Commands int
	Err      error
}

// =============================================================================
// MODEL
// =============================================================================

// Options configures New.
type Options struct {
	// Shell evaluates submitted lines. Required.
	Shell *shell.Shell
	// Output is the buffer the shell writes command output to. Optional.
	Output *bytes.Buffer
	// Complete returns completions for the typed line. Optional.
	Complete func(input string) []commands.Completion
	// Prompt is shown before the input.
	Prompt string
	// Theme defaults to styles.NewTheme().
	Theme  *styles.Theme
	Logger *zap.Logger
}

type statusKind int

const (
	statusIdle statusKind = iota
	statusOK
	statusError
	statusInfo
)

// lastRun is written by the shell's before-run hook.
type lastRun struct {
	name string
}

// Model is the bubbletea model of the single-line command bar.
type Model struct {
	shell    *shell.Shell
	output   *bytes.Buffer
	complete func(string) []commands.Completion
	logger   *zap.Logger

	input      textinput.Model
	keys       KeyMap
	theme      *styles.Theme
	completion *commands.CompletionState
	run        *lastRun

	shown      string
	status     string
	statusKind statusKind
	quitting   bool
}

// New creates the command bar model and installs the shell's before-run hook.
func New(opts Options) (Model, error) {
	if opts.Shell == nil {
		return Model{}, errors.New("bar: shell is required")
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Prompt = opts.Prompt
	ti.Placeholder = "type a command, Tab to complete"
	ti.PromptStyle = theme.Prompt
	ti.TextStyle = theme.InputText
	ti.PlaceholderStyle = theme.Placeholder
	ti.Focus()

	run := &lastRun{}
	opts.Shell.SetBeforeRun(func(cmd commands.Command) {
		run.name = cmd.Name().String()
	})

	return Model{
		shell:      opts.Shell,
		output:     opts.Output,
		complete:   opts.Complete,
		logger:     logger.With(zap.String("component", "bar")),
		input:      ti,
		keys:       DefaultKeyMap(),
		theme:      theme,
		completion: commands.NewCompletionState(),
		run:        run,
	}, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Value returns the current input line.
func (m Model) Value() string { return m.input.Value() }

// Status returns the status line text without styling.
func (m Model) Status() string { return m.status }

// Output returns the output of the last evaluation.
func (m Model) Output() string { return m.shown }

// Quitting reports whether the bar is shutting down.
func (m Model) Quitting() bool { return m.quitting }

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.theme.SetWidth(msg.Width)
		m.input.Width = msg.Width - util.StringWidth(m.input.Prompt) - 1
		return m, nil

	case ReloadedMsg:
		if msg.Err != nil {
			m.setStatus(statusError, "reload failed: "+msg.Err.Error())
		} else {
			m.setStatus(statusInfo, fmt.Sprintf("commands reloaded (%d)", msg.Commands))
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.completion.Active() {
			m.completion.Clear()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Complete):
		m.completeNext(false)
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.completeNext(true)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.completion.Clear()
		if h := m.shell.History(); h != nil {
			if entry, ok := h.GetPrevEntry(); ok {
				m.setInput(entry.String())
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.completion.Clear()
		if h := m.shell.History(); h != nil {
			if entry, ok := h.GetNextEntry(); ok {
				m.setInput(entry.String())
			}
		}
		return m, nil
	}

	m.completion.Clear()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit evaluates the input line and ends the round-trip.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.completion.Clear()
	m.run.name = ""
	if m.output != nil {
		m.output.Reset()
	}

	err := m.shell.Run(text.Wrap(line))
	m.shown = m.collectOutput()

	switch {
	case err != nil:
		m.setStatus(statusError, m.shell.ErrorMessage())
	case m.run.name != "":
		m.setStatus(statusOK, m.run.name)
	default:
		m.setStatus(statusIdle, "")
	}

	quit := m.shell.QuitRequested()
	m.shell.EndRoundTrip()
	m.input.Reset()

	if quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) collectOutput() string {
	if m.output == nil || m.output.Len() == 0 {
		return ""
	}
	lines := strings.Split(strings.TrimRight(m.output.String(), "\n"), "\n")
	if len(lines) > maxOutputLines {
		lines = append(lines[:maxOutputLines-1], fmt.Sprintf("... %d more lines", len(lines)-maxOutputLines+1))
	}
	return strings.Join(lines, "\n")
}

// completeNext starts completion or cycles through the candidates.
func (m *Model) completeNext(backwards bool) {
	if m.complete == nil {
		return
	}
	if m.completion.Active() {
		if backwards {
			m.completion.Prev()
		} else {
			m.completion.Next()
		}
		m.setInput(m.completion.Accept())
		return
	}

	input := m.input.Value()
	candidates := m.complete(input)
	switch len(candidates) {
	case 0:
		m.setStatus(statusInfo, "no completions")
	case 1:
		m.setInput(candidates[0].Value + " ")
	default:
		if prefix := commands.CommonPrefix(candidates); len(prefix) > len(strings.TrimLeft(input, " \t")) {
			m.setInput(prefix)
			return
		}
		m.completion.Update(input, candidates)
		m.setInput(m.completion.Accept())
	}
}

func (m *Model) setInput(value string) {
	m.input.SetValue(value)
	m.input.CursorEnd()
}

func (m *Model) setStatus(kind statusKind, message string) {
	m.statusKind = kind
	m.status = message
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.completion.Active() {
		for i, c := range m.completion.Completions {
			style := m.theme.CompletionItem
			if i == m.completion.Selected {
				style = m.theme.CompletionSelected
			}
			b.WriteString(style.Render(c.Value))
			if c.Description != "" {
				b.WriteString("  ")
				b.WriteString(m.theme.CompletionDesc.Render(c.Description))
			}
			b.WriteString("\n")
		}
	}

	if m.shown != "" {
		b.WriteString(m.theme.Output.Render(m.shown))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.StatusBar.Render(m.renderStatus()))
	return b.String()
}

func (m Model) renderStatus() string {
	switch m.statusKind {
	case statusOK:
		return m.theme.StatusOK.Render(styles.StatusIndicators.Success + " " + m.status)
	case statusError:
		return m.theme.StatusError.Render(styles.StatusIndicators.Error + " " + m.status)
	case statusInfo:
		return m.theme.StatusHint.Render(styles.StatusIndicators.Info + " " + m.status)
	}

	hints := make([]string, 0, 4)
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return m.theme.StatusHint.Render(strings.Join(hints, "  "))
}

// =============================================================================
// PROGRAM
// =============================================================================

// NewProgram wraps the model in a bubbletea program. Use Program.Send with a
// ReloadedMsg to report reloads from other goroutines.
func NewProgram(m Model, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(m, opts...)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Interactive front ends (line mode, command bar) and batch mode.

package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/miere43/cmdbar/internal/text"
	"github.com/miere43/cmdbar/internal/ui/bar"
	"github.com/miere43/cmdbar/internal/ui/styles"
)

// =============================================================================
// ROUND TRIP
// =============================================================================

// evaluate runs one line, reports a failure to errOut and ends the
// round-trip. It reports whether a command asked to quit, and the failure.
func (a *App) evaluate(line string, errOut io.Writer) (bool, error) {
	err := a.Shell.Run(text.Wrap(line))
	if err != nil {
		DisplayError(errOut, err)
	}
	quit := a.Shell.QuitRequested()
	a.Shell.EndRoundTrip()
	return quit, err
}

// =============================================================================
// LINE MODE
// =============================================================================

// RunLine runs the liner prompt loop until EOF, Ctrl-C or a quit command.
func (a *App) RunLine(errOut io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetCompleter(a.CompleteLine)

	prompt := a.Config.Shell.Prompt
	for {
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		quit, _ := a.evaluate(input, errOut)
		a.syncLinerHistory(line)
		if quit {
			return nil
		}
	}
}

// syncLinerHistory mirrors the shell history into liner so arrow keys walk
// the same bounded list.
func (a *App) syncLinerHistory(line *liner.State) {
	line.ClearHistory()
	for _, entry := range a.History.Strings() {
		line.AppendHistory(entry)
	}
}

// =============================================================================
// BATCH MODE
// =============================================================================

// RunBatch evaluates every line of r until EOF or a quit command. It returns
// the last evaluation failure, so the exit code reflects it.
func (a *App) RunBatch(r io.Reader, errOut io.Writer) error {
	scanner := bufio.NewScanner(r)
	var last error
	for scanner.Scan() {
		line := scanner.Text()
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		quit, err := a.evaluate(line, errOut)
		if err != nil {
			last = err
		}
		if quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if last != nil {
		return &ReportedError{Err: last}
	}
	return nil
}

// =============================================================================
// COMMAND BAR MODE
// =============================================================================

// RunBar runs the bubbletea command bar. Command output is captured and
// shown under the input line.
func (a *App) RunBar(output *bytes.Buffer) error {
	m, err := bar.New(bar.Options{
		Shell:    a.Shell,
		Output:   output,
		Complete: a.Complete,
		Prompt:   a.Config.Shell.Prompt,
		Theme:    styles.NewThemeWithProfile(GetColorProfile()),
		Logger:   a.Logger,
	})
	if err != nil {
		return err
	}

	p := bar.NewProgram(m)
	a.SetOnReload(func(count int, err error) {
		p.Send(bar.ReloadedMsg{Commands: count, Err: err})
	})
	defer a.SetOnReload(nil)

	if _, err := p.Run(); err != nil {
		a.Logger.Error("command bar failed", zap.Error(err))
		return err
	}
	return nil
}

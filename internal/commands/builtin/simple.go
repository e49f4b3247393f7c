// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"fmt"
	"io"
	"strings"

	"github.com/miere43/cmdbar/internal/commands"
	"github.com/miere43/cmdbar/internal/text"
	"github.com/miere43/cmdbar/internal/util"
)

// =============================================================================
// QUIT
// =============================================================================

// Quit asks the front end to exit.
type Quit struct {
	commands.Base
}

func (c *Quit) Kind() string        { return "builtin" }
func (c *Quit) Description() string { return "Exit cmdbar" }

func (c *Quit) Execute(state *commands.State, args []text.String) error {
	state.RequestQuit()
	return nil
}

// =============================================================================
// HELP
// =============================================================================

// Help lists the commands of its registry, or describes one command.
type Help struct {
	commands.Base
}

func (c *Help) Kind() string        { return "builtin" }
func (c *Help) Description() string { return "List commands, or describe one" }

func (c *Help) Execute(state *commands.State, args []text.String) error {
	reg := c.Registry()
	if reg == nil {
		return fmt.Errorf("help is not registered")
	}

	if len(args) > 0 {
		cmd := reg.FindCommandByName(args[0])
		if cmd == nil {
			state.Failf("no command named %q", args[0])
			return nil
		}
		_, err := fmt.Fprintf(state.Out, "%s (%s): %s\n",
			cmd.Name(), commands.KindOf(cmd), commands.DescriptionOf(cmd))
		return err
	}

	return WriteCommandTable(state.Out, reg, DefaultTableWidth)
}

const (
	// DefaultTableWidth is the line width used when the caller does not know
	// the terminal width.
	DefaultTableWidth = 80

	minDescriptionWidth = 16
)

// WriteCommandTable writes name, kind and description of every registered
// command in aligned columns. Descriptions are truncated so lines fit in
// width cells; a width of 0 or less means DefaultTableWidth.
func WriteCommandTable(w io.Writer, reg *commands.Registry, width int) error {
	if width <= 0 {
		width = DefaultTableWidth
	}
	sorted := reg.Sorted()
	rows := make([][]string, 0, len(sorted))
	for _, cmd := range sorted {
		rows = append(rows, []string{
			cmd.Name().String(),
			commands.KindOf(cmd),
			commands.DescriptionOf(cmd),
		})
	}
	_, err := io.WriteString(w, util.FitColumns(rows, 2, width, minDescriptionWidth))
	return err
}

// =============================================================================
// ECHO
// =============================================================================

// Echo prints its arguments separated by single spaces.
type Echo struct {
	commands.Base
}

func (c *Echo) Kind() string        { return "builtin" }
func (c *Echo) Description() string { return "Print the arguments" }

func (c *Echo) Execute(state *commands.State, args []text.String) error {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	_, err := fmt.Fprintln(state.Out, strings.Join(parts, " "))
	return err
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"fmt"

	"github.com/miere43/cmdbar/internal/commands"
	"github.com/miere43/cmdbar/internal/text"
)

// RunProgram starts a configured executable. Arguments typed after the
// command name are appended to the configured ones.
type RunProgram struct {
	commands.Base

	Path  text.String
	Args  []text.String
	Dir   text.String
	Flags ProcessFlags

	description string
	launcher    Launcher
}

// NewRunProgram creates a program command. Path, Args and Dir become owned by
// the command.
func NewRunProgram(launcher Launcher, path text.String, args []text.String, dir text.String, flags ProcessFlags) *RunProgram {
	return &RunProgram{
		Path:     path,
		Args:     args,
		Dir:      dir,
		Flags:    flags,
		launcher: launcher,
	}
}

// Kind implements commands.Kinder.
func (c *RunProgram) Kind() string { return ProgramDataName }

// Description implements commands.Describer.
func (c *RunProgram) Description() string {
	if c.description != "" {
		return c.description
	}
	return "Run " + c.Path.String()
}

// Execute starts the program.
func (c *RunProgram) Execute(state *commands.State, args []text.String) error {
	p := Process{
		Path:  c.Path.String(),
		Dir:   c.Dir.String(),
		Flags: c.Flags,
		Args:  make([]string, 0, len(c.Args)+len(args)),
	}
	for _, a := range c.Args {
		p.Args = append(p.Args, a.String())
	}
	for _, a := range args {
		p.Args = append(p.Args, a.String())
	}

	if err := c.launcher.Start(p); err != nil {
		return fmt.Errorf("cannot start %s: %w", p.Path, err)
	}
	return nil
}

// Dispose releases the path, arguments, working directory and name.
func (c *RunProgram) Dispose() {
	c.Path.Dispose()
	c.Dir.Dispose()
	for i := range c.Args {
		c.Args[i].Dispose()
	}
	c.Args = nil
	c.Base.Dispose()
}

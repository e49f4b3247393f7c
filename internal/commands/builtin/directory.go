// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/miere43/cmdbar/internal/commands"
	"github.com/miere43/cmdbar/internal/text"
	"github.com/miere43/cmdbar/internal/util"
)

// ErrNoDirectory is returned when neither the command nor the arguments name
// a directory.
var ErrNoDirectory = errors.New("no directory given")

// OpenDirectory opens a folder in the file manager. With an argument the
// argument is opened instead; a relative argument is resolved against the
// configured path.
type OpenDirectory struct {
	commands.Base

	Path text.String

	description string
	launcher    Launcher
	stat        func(string) (os.FileInfo, error)
}

// NewOpenDirectory creates a directory command. Path becomes owned by the
// command and may be empty.
func NewOpenDirectory(launcher Launcher, path text.String) *OpenDirectory {
	return &OpenDirectory{
		Path:     path,
		launcher: launcher,
		stat:     os.Stat,
	}
}

// Kind implements commands.Kinder.
func (c *OpenDirectory) Kind() string { return DirectoryDataName }

// Description implements commands.Describer.
func (c *OpenDirectory) Description() string {
	if c.description != "" {
		return c.description
	}
	if c.Path.IsEmpty() {
		return "Open a folder"
	}
	return "Open " + c.Path.String()
}

// Target resolves the folder to open for the given arguments.
func (c *OpenDirectory) Target(args []text.String) (string, error) {
	base := util.ExpandHome(c.Path.String())
	if len(args) == 0 {
		if base == "" {
			return "", ErrNoDirectory
		}
		return filepath.Clean(base), nil
	}

	arg := util.ExpandHome(args[0].String())
	if base == "" || filepath.IsAbs(arg) {
		return filepath.Clean(arg), nil
	}
	return filepath.Join(base, arg), nil
}

// Execute opens the resolved folder after checking that it exists.
func (c *OpenDirectory) Execute(state *commands.State, args []text.String) error {
	target, err := c.Target(args)
	if err != nil {
		return err
	}

	info, err := c.stat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s does not exist", target)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", target)
	}

	return c.launcher.OpenFolder(target)
}

// Dispose releases the path and name.
func (c *OpenDirectory) Dispose() {
	c.Path.Dispose()
	c.Base.Dispose()
}

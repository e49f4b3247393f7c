// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"errors"
	"fmt"

	"github.com/miere43/cmdbar/internal/commands"
	"github.com/miere43/cmdbar/internal/memory"
	"github.com/miere43/cmdbar/internal/shell"
	"github.com/miere43/cmdbar/internal/text"
)

// Section names of the built-in factories in commands files.
const (
	ProgramDataName   = "program"
	DirectoryDataName = "directory"
)

var (
	// ErrMissingKey is returned when a required key is absent.
	ErrMissingKey = errors.New("missing required key")
	// ErrUnknownKey is returned for keys a factory does not understand.
	ErrUnknownKey = errors.New("unknown key")
	// ErrDuplicateKey is returned when a key appears twice in one group.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Env carries what the built-in commands need from the application.
type Env struct {
	// Heap receives command names and parameters.
	Heap memory.Allocator
	// Launcher starts programs and opens folders.
	Launcher Launcher
}

// =============================================================================
// FACTORY DESCRIPTORS
// =============================================================================

// Infos returns the descriptors of every built-in factory.
func Infos(env Env) []*commands.Info {
	return []*commands.Info{ProgramInfo(env), DirectoryInfo(env)}
}

// RegisterInfos registers every built-in factory with reg.
func RegisterInfos(reg *commands.Registry, env Env) error {
	for _, info := range Infos(env) {
		if err := reg.RegisterInfo(info); err != nil {
			return err
		}
	}
	return nil
}

// ProgramInfo describes the "program" section:
//
//	[program]
//	name = notepad
//	path = C:\Windows\notepad.exe
//	args = "C:\notes\todo.txt"
//	dir = C:\notes
//	flags = wait
//	description = Edit the todo list
func ProgramInfo(env Env) *commands.Info {
	return &commands.Info{
		DataName:    ProgramDataName,
		Description: "Run a program (path, args, dir, flags, description)",
		Create: func(keys, values []text.String) (commands.Command, error) {
			g, err := collect(keys, values, "path", "args", "dir", "flags", "description")
			if err != nil {
				return nil, err
			}
			path, ok := g["path"]
			if !ok || path.IsEmpty() {
				return nil, fmt.Errorf("%w %q", ErrMissingKey, "path")
			}
			flags, err := ParseProcessFlags(g["flags"].String())
			if err != nil {
				return nil, err
			}

			var owned ownedSet
			cmd := NewRunProgram(env.Launcher, text.Empty, nil, text.Empty, flags)
			cmd.Path = owned.clone(env.Heap, path)
			cmd.Dir = owned.clone(env.Heap, g["dir"])
			for _, arg := range shell.Tokenize(g["args"], nil) {
				cmd.Args = append(cmd.Args, owned.clone(env.Heap, arg))
			}
			if owned.err != nil {
				cmd.Dispose()
				return nil, owned.err
			}
			cmd.description = g["description"].String()
			return cmd, nil
		},
	}
}

// DirectoryInfo describes the "directory" section:
//
//	[directory]
//	name = docs
//	path = ~/Documents
func DirectoryInfo(env Env) *commands.Info {
	return &commands.Info{
		DataName:    DirectoryDataName,
		Description: "Open a folder (path, description)",
		Create: func(keys, values []text.String) (commands.Command, error) {
			g, err := collect(keys, values, "path", "description")
			if err != nil {
				return nil, err
			}
			path, ok := g["path"]
			if !ok || path.IsEmpty() {
				return nil, fmt.Errorf("%w %q", ErrMissingKey, "path")
			}

			var owned ownedSet
			cmd := NewOpenDirectory(env.Launcher, owned.clone(env.Heap, path))
			if owned.err != nil {
				return nil, owned.err
			}
			cmd.description = g["description"].String()
			return cmd, nil
		},
	}
}

// =============================================================================
// PROGRAMMATIC COMMANDS
// =============================================================================

// RegisterCommands registers quit, help and echo with reg, naming them from
// heap.
func RegisterCommands(reg *commands.Registry, heap memory.Allocator) error {
	builtins := []struct {
		name string
		cmd  commands.Command
	}{
		{"quit", &Quit{}},
		{"help", &Help{}},
		{"echo", &Echo{}},
	}
	for _, b := range builtins {
		name, err := text.Wrap(b.name).Clone(heap)
		if err != nil {
			return fmt.Errorf("register %s: %w", b.name, err)
		}
		b.cmd.SetName(name)
		if err := reg.RegisterCommand(b.cmd); err != nil {
			b.cmd.Dispose()
			return fmt.Errorf("register %s: %w", b.name, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// collect maps keys to values, rejecting keys outside allowed and repeated
// keys. Lookups are case-sensitive; commands files use lower-case keys.
func collect(keys, values []text.String, allowed ...string) (map[string]text.String, error) {
	g := make(map[string]text.String, len(keys))
	for i, key := range keys {
		k := key.String()
		known := false
		for _, a := range allowed {
			if a == k {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("%w %q", ErrUnknownKey, k)
		}
		if _, dup := g[k]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicateKey, k)
		}
		g[k] = values[i]
	}
	return g, nil
}

// ownedSet clones strings until the first allocation failure, which it
// remembers.
type ownedSet struct {
	err error
}

func (o *ownedSet) clone(a memory.Allocator, s text.String) text.String {
	if o.err != nil {
		return text.Empty
	}
	c, err := s.Clone(a)
	if err != nil {
		o.err = err
	}
	return c
}

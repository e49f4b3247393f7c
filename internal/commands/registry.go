// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/miere43/cmdbar/internal/text"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNilCommand is returned when registering a nil command.
	ErrNilCommand = errors.New("commands: nil command")

	// ErrAlreadyRegistered is returned when a command is already bound to a
	// registry. Commands are never shared between registries.
	ErrAlreadyRegistered = errors.New("commands: command already registered")

	// ErrDuplicateName is returned when a command with the same name (ignoring
	// case) is already registered.
	ErrDuplicateName = errors.New("commands: duplicate command name")

	// ErrUnnamed is returned when registering a command without a name.
	ErrUnnamed = errors.New("commands: command has no name")

	// ErrDuplicateInfo is returned when two factories share a data name.
	ErrDuplicateInfo = errors.New("commands: duplicate command info")
)

// =============================================================================
// COMMAND INFO (FACTORIES)
// =============================================================================

// InfoFlags modify how the loader treats a command type.
type InfoFlags uint32

const (
	// FlagSingle allows at most one group of this type per commands file.
	FlagSingle InfoFlags = 1 << iota
)

// Factory builds a command from the key/value pairs of one commands file
// group. keys and values are parallel and exclude the reserved "name" key;
// they are views into the file text, so a factory must clone anything it
// keeps. A factory reports missing or invalid keys as an error.
type Factory func(keys, values []text.String) (Command, error)

// Info describes a command type the loader can construct.
type Info struct {
	// DataName is the section name used in commands files, e.g. "program".
	DataName string
	// Description is shown by `cmdbar check` and help listings.
	Description string
	Flags       InfoFlags
	Create      Factory
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry owns command instances and holds the command type descriptors
// used by the loader. Instances are looked up by a linear, case-insensitive
// scan; the registry is the only place commands are destroyed.
//
// A Registry is not safe for concurrent use.
type Registry struct {
	commands []Command
	infos    map[string]*Info
	logger   *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		infos:  make(map[string]*Info),
		logger: logger.With(zap.String("component", "registry")),
	}
}

// RegisterCommand takes ownership of cmd and binds it to the registry.
func (r *Registry) RegisterCommand(cmd Command) error {
	if cmd == nil {
		return ErrNilCommand
	}
	if cmd.Registry() != nil {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, cmd.Name())
	}
	name := cmd.Name()
	if name.IsEmpty() {
		return ErrUnnamed
	}
	if r.FindCommandByName(name) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	r.commands = append(r.commands, cmd)
	cmd.attach(r)

	r.logger.Debug("command registered",
		zap.Stringer("name", name),
		zap.String("kind", KindOf(cmd)))
	return nil
}

// FindCommandByName returns the command whose name equals name ignoring case,
// or nil.
func (r *Registry) FindCommandByName(name text.String) Command {
	for _, cmd := range r.commands {
		if cmd.Name().Equals(name, text.CaseInsensitive) {
			return cmd
		}
	}
	return nil
}

// Find is FindCommandByName for Go strings.
func (r *Registry) Find(name string) Command {
	return r.FindCommandByName(text.Wrap(name))
}

// Unregister removes and destroys the command with the given name. It
// reports whether a command was removed.
func (r *Registry) Unregister(name text.String) bool {
	for i, cmd := range r.commands {
		if !cmd.Name().Equals(name, text.CaseInsensitive) {
			continue
		}
		r.commands = append(r.commands[:i], r.commands[i+1:]...)
		r.logger.Debug("command unregistered", zap.Stringer("name", name))
		cmd.Dispose()
		return true
	}
	return false
}

// UnregisterAllCommands destroys every registered command and empties the
// registry. Command values must not be used afterwards.
func (r *Registry) UnregisterAllCommands() {
	count := len(r.commands)
	for i, cmd := range r.commands {
		cmd.Dispose()
		r.commands[i] = nil
	}
	r.commands = r.commands[:0]
	r.logger.Debug("all commands unregistered", zap.Int("count", count))
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.commands) }

// All returns the registered commands in registration order.
func (r *Registry) All() []Command {
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Sorted returns the registered commands ordered by name, ignoring case.
func (r *Registry) Sorted() []Command {
	out := r.All()
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name().String()) < strings.ToLower(out[j].Name().String())
	})
	return out
}

// =============================================================================
// INFO REGISTRATION
// =============================================================================

// RegisterInfo adds a command type descriptor. Descriptors are not owned by
// the registry and survive UnregisterAllCommands.
func (r *Registry) RegisterInfo(info *Info) error {
	if info == nil || info.Create == nil || info.DataName == "" {
		return fmt.Errorf("commands: invalid command info")
	}
	key := strings.ToLower(info.DataName)
	if _, exists := r.infos[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateInfo, info.DataName)
	}
	r.infos[key] = info
	return nil
}

// FindInfo returns the descriptor registered under dataName, ignoring case.
func (r *Registry) FindInfo(dataName text.String) *Info {
	return r.infos[strings.ToLower(dataName.String())]
}

// Infos returns all descriptors sorted by data name.
func (r *Registry) Infos() []*Info {
	out := make([]*Info, 0, len(r.infos))
	for _, info := range r.infos {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DataName < out[j].DataName })
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

// Kinder is implemented by commands that report a kind for listings.
type Kinder interface {
	Kind() string
}

// KindOf returns the command's kind, or "command" when it does not report one.
func KindOf(cmd Command) string {
	if k, ok := cmd.(Kinder); ok {
		return k.Kind()
	}
	return "command"
}

// DescriptionOf returns the command's description, or "".
func DescriptionOf(cmd Command) string {
	if d, ok := cmd.(Describer); ok {
		return d.Description()
	}
	return ""
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"io"

	"github.com/miere43/cmdbar/internal/memory"
	"github.com/miere43/cmdbar/internal/text"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is a named, executable entry of a Registry.
//
// Concrete commands embed Base, which supplies the name, the registry
// back-reference and disposal of both. Execute receives the arguments that
// followed the command name; they are views into the evaluated line and are
// only valid for the duration of the call.
type Command interface {
	// Name returns the command's owned name.
	Name() text.String
	// SetName replaces the name, taking ownership of name.
	SetName(name text.String)
	// Registry returns the registry the command is registered in, if any.
	Registry() *Registry
	// Execute runs the command. A returned error is reported to the user.
	Execute(state *State, args []text.String) error
	// Dispose releases everything the command owns.
	Dispose()

	attach(r *Registry)
}

// Describer is implemented by commands that provide a one-line description
// for help and completion listings.
type Describer interface {
	Description() string
}

// Base carries the state shared by every command.
type Base struct {
	name     text.String
	registry *Registry
}

// Name returns the command name.
func (b *Base) Name() text.String { return b.name }

// SetName replaces the command name. The previous name is disposed.
func (b *Base) SetName(name text.String) {
	b.name.Dispose()
	b.name = name
}

// Registry returns the owning registry.
func (b *Base) Registry() *Registry { return b.registry }

// Dispose releases the name and detaches the command from its registry.
func (b *Base) Dispose() {
	b.name.Dispose()
	b.registry = nil
}

func (b *Base) attach(r *Registry) { b.registry = r }

// =============================================================================
// EXECUTION STATE
// =============================================================================

// fallbackError is shown when the error message itself cannot be allocated.
const fallbackError = "internal error: out of memory while formatting message"

// State is the per-Evaluate execution state. It is reset at the start of every
// evaluation; its error message lives in the transient allocator and is only
// valid until that allocator is cleared.
type State struct {
	// ID identifies the evaluation in logs.
	ID string
	// Command is the resolved command, nil until lookup succeeds.
	Command Command
	// Out receives command output.
	Out io.Writer

	transient memory.Allocator
	err       text.String
	quit      bool
}

// NewState creates an execution state that formats errors into transient.
func NewState(transient memory.Allocator, out io.Writer) *State {
	if out == nil {
		out = io.Discard
	}
	return &State{transient: transient, Out: out}
}

// Reset clears the state for a new evaluation.
func (s *State) Reset() {
	s.err.Dispose()
	s.err = text.Empty
	s.ID = ""
	s.Command = nil
	s.quit = false
}

// Failf records a formatted error message. If the message cannot be
// allocated a fixed fallback message is recorded instead.
func (s *State) Failf(format string, args ...any) {
	s.err.Dispose()
	msg, err := text.Format(s.transient, format, args...)
	if err != nil || msg.IsEmpty() {
		msg = text.Wrap(fallbackError)
	}
	s.err = msg
}

// Failed reports whether an error message was recorded.
func (s *State) Failed() bool { return !s.err.IsEmpty() }

// Error returns the recorded error message, or the empty string.
func (s *State) Error() text.String { return s.err }

// Allocator returns the transient allocator commands may use for scratch
// storage that does not outlive the evaluation.
func (s *State) Allocator() memory.Allocator { return s.transient }

// RequestQuit asks the front end to stop after this evaluation.
func (s *State) RequestQuit() { s.quit = true }

// QuitRequested reports whether a command asked to quit. Cleared by Reset.
func (s *State) QuitRequested() bool { return s.quit }

// Discard drops the error message without releasing its storage. Used when
// the transient allocator has been cleared underneath the state.
func (s *State) Discard() {
	s.err = text.Empty
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/miere43/cmdbar/internal/commands"
	"github.com/miere43/cmdbar/internal/history"
	"github.com/miere43/cmdbar/internal/memory"
	"github.com/miere43/cmdbar/internal/text"
)

// =============================================================================
// SHELL
// =============================================================================

// BeforeRunFunc is called after a command has been resolved and right before
// it executes. It must not call back into the shell.
type BeforeRunFunc func(cmd commands.Command)

// Options configures New.
type Options struct {
	Registry *commands.Registry // required
	Pools    *memory.Pools      // required
	History  *history.History   // nil disables history
	Out      io.Writer          // command output, nil = discard
	Logger   *zap.Logger        // nil = no logging
}

// Shell tokenizes input lines, resolves the first token against a registry
// and runs the command with the remaining tokens.
//
// Evaluation is not reentrant. A call made while another evaluation is in
// progress, whether from inside a command or from another goroutine, fails
// with KindReentrant and leaves the running evaluation untouched.
type Shell struct {
	mu   sync.Mutex
	busy atomic.Bool

	registry  *commands.Registry
	pools     *memory.Pools
	history   *history.History
	logger    *zap.Logger
	state     *commands.State
	beforeRun BeforeRunFunc

	tokens  []text.String
	lastErr *Error
}

// New creates a shell.
func New(opts Options) (*Shell, error) {
	if opts.Registry == nil {
		return nil, errors.New("shell: registry is required")
	}
	if opts.Pools == nil {
		return nil, errors.New("shell: pools are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{
		registry: opts.Registry,
		pools:    opts.Pools,
		history:  opts.History,
		logger:   logger.With(zap.String("component", "shell")),
		state:    commands.NewState(opts.Pools.Transient, opts.Out),
		tokens:   make([]text.String, 0, 8),
	}, nil
}

// SetBeforeRun installs the before-run hook. Pass nil to remove it.
func (s *Shell) SetBeforeRun(fn BeforeRunFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeRun = fn
}

// Evaluate runs one input line and reports success. On failure the reason is
// available from Err and ErrorMessage until the next evaluation.
func (s *Shell) Evaluate(input text.String) bool {
	return s.Run(input) == nil
}

// EvaluateString is Evaluate for Go strings.
func (s *Shell) EvaluateString(input string) bool {
	return s.Run(text.Wrap(input)) == nil
}

// Run is Evaluate returning the failure as an *Error.
func (s *Shell) Run(input text.String) error {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Warn("evaluate rejected: already evaluating")
		return &Error{
			Kind:    KindReentrant,
			Message: "cannot evaluate while another command is running",
		}
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.run(input)
}

func (s *Shell) run(input text.String) error {
	started := time.Now()

	s.state.Reset()
	s.state.ID = uuid.NewString()
	s.lastErr = nil

	if s.history != nil && !input.Trimmed().IsEmpty() {
		if err := s.history.SaveEntry(input); err != nil {
			s.logger.Warn("history entry dropped", zap.Error(err))
		}
	}

	tokens := Tokenize(input, s.tokens[:0])
	defer func() {
		clear(tokens)
		s.tokens = tokens[:0]
	}()

	if len(tokens) == 0 {
		return s.fail(KindInvalidInput, "", nil, "invalid input")
	}

	name := tokens[0]
	cmd := s.registry.FindCommandByName(name)
	if cmd == nil {
		return s.fail(KindCommandNotFound, name.String(), nil, "command %q not found", name)
	}
	s.state.Command = cmd

	if s.beforeRun != nil {
		s.beforeRun(cmd)
	}

	log := s.logger.With(
		zap.String("id", s.state.ID),
		zap.Stringer("command", cmd.Name()))
	log.Debug("command started", zap.Int("args", len(tokens)-1))

	err := cmd.Execute(s.state, tokens[1:])
	elapsed := time.Since(started)

	switch {
	case err != nil:
		kind := KindCommandFailed
		if errors.Is(err, memory.ErrOutOfMemory) {
			kind = KindAllocationFailure
		}
		log.Info("command failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return s.fail(kind, cmd.Name().String(), err, "%s: %v", cmd.Name(), err)
	case s.state.Failed():
		log.Info("command failed", zap.Duration("elapsed", elapsed),
			zap.Stringer("message", s.state.Error()))
		s.lastErr = &Error{
			Kind:    KindCommandFailed,
			Command: cmd.Name().String(),
			Message: s.state.Error().String(),
		}
		return s.lastErr
	}

	log.Debug("command finished", zap.Duration("elapsed", elapsed))
	return nil
}

// fail records the failure in the execution state and returns it.
func (s *Shell) fail(kind Kind, command string, cause error, format string, args ...any) error {
	s.state.Failf(format, args...)
	s.lastErr = &Error{
		Kind:    kind,
		Command: command,
		Message: s.state.Error().String(),
		Err:     cause,
	}
	if kind != KindCommandFailed && kind != KindAllocationFailure {
		s.logger.Debug("evaluate failed",
			zap.Stringer("kind", kind),
			zap.String("message", s.lastErr.Message))
	}
	return s.lastErr
}

// =============================================================================
// RESULT ACCESS
// =============================================================================

// Err returns the failure of the last evaluation, or nil.
func (s *Shell) Err() *Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ErrorMessage returns the error text of the last evaluation, or "". The
// text stays available after EndRoundTrip.
func (s *Shell) ErrorMessage() string {
	if err := s.Err(); err != nil {
		return err.Message
	}
	return ""
}

// QuitRequested reports whether the last evaluated command asked to quit.
func (s *Shell) QuitRequested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.QuitRequested()
}

// History returns the history buffer, or nil.
func (s *Shell) History() *history.History { return s.history }

// Registry returns the command registry.
func (s *Shell) Registry() *commands.Registry { return s.registry }

// EndRoundTrip clears the transient arena. Front ends call it once per UI
// round-trip, after the result of the last evaluation has been shown.
func (s *Shell) EndRoundTrip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Discard()
	s.pools.Transient.Clear()
}

// WithRegistry runs fn with exclusive access to the registry, waiting for a
// running evaluation to finish. Used to reload commands. fn must not
// evaluate.
func (s *Shell) WithRegistry(fn func(*commands.Registry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.registry); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	return nil
}

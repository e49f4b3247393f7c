// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, exit codes and error display for the cmdbar CLI.
//
// Subcommands always return errors and never print them; Execute displays
// the error once and maps it to an exit code.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/miere43/cmdbar/internal/config"
	"github.com/miere43/cmdbar/internal/loader"
	"github.com/miere43/cmdbar/internal/shell"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error, including a
	// failed command evaluation
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a bad config file or commands file
	ExitConfigError = 3
	// ExitNotFoundError indicates the evaluated command does not exist
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES FOR STRUCTURED ERROR HANDLING
// =============================================================================

// CommandError represents a CLI subcommand failure with context.
type CommandError struct {
	Command string // Subcommand that failed (e.g., "init", "check")
	Action  string // Action being performed (e.g., "write config")
	Err     error  // Underlying error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError represents invalid arguments or flags.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// ConfigError wraps a failure to load or validate configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ReportedError marks an error that has already been shown to the user. It
// still determines the exit code.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR CONSTRUCTION HELPERS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action string, err error) error {
	return &CommandError{Command: command, Action: action, Err: err}
}

// NewUsageError creates a usage error.
func NewUsageError(format string, args ...any) error {
	return &UsageError{Reason: fmt.Sprintf(format, args...)}
}

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// DisplayError writes err to w in a consistent format. Errors that were
// already reported are skipped.
func DisplayError(w io.Writer, err error) {
	var reported *ReportedError
	if err == nil || errors.As(err, &reported) {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("error:"), err.Error())
}

// GetExitCode maps an error to its exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var configErr *ConfigError
	var parseErr *loader.ParseError
	var validateErrs config.ValidateErrors
	var shellErr *shell.Error

	switch {
	case errors.As(err, &usageErr):
		return ExitUsageError
	case errors.As(err, &configErr),
		errors.As(err, &parseErr),
		errors.As(err, &validateErrs):
		return ExitConfigError
	case errors.As(err, &shellErr):
		if shellErr.Kind == shell.KindCommandNotFound {
			return ExitNotFoundError
		}
		return ExitGeneralError
	}
	return ExitGeneralError
}

// IsUsageError checks if an error is a usage error.
func IsUsageError(err error) bool {
	var usageErr *UsageError
	return errors.As(err, &usageErr)
}

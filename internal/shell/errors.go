// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Kind classifies an evaluation failure.
type Kind int

const (
	// KindInvalidInput means the line held no tokens.
	KindInvalidInput Kind = iota + 1
	// KindCommandNotFound means no registered command matched the first token.
	KindCommandNotFound
	// KindCommandFailed means the command ran and reported an error.
	KindCommandFailed
	// KindReentrant means Evaluate was called while another evaluation was
	// in progress.
	KindReentrant
	// KindAllocationFailure means an allocator returned nil.
	KindAllocationFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindCommandNotFound:
		return "command not found"
	case KindCommandFailed:
		return "command failed"
	case KindReentrant:
		return "reentrant evaluate"
	case KindAllocationFailure:
		return "allocation failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error describes a failed evaluation.
type Error struct {
	Kind    Kind
	Command string // resolved or attempted command name, may be empty
	Message string // display text
	Err     error  // error returned by the command, if any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsNotFound reports whether err is a command-not-found failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindCommandNotFound
}

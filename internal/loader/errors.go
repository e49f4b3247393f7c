// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package loader

import (
	"fmt"
	"strings"
)

// Kind classifies a ParseError.
type Kind int

const (
	// KindSyntax is a line that is neither a header, a key/value pair, a
	// comment nor blank.
	KindSyntax Kind = iota + 1
	// KindKeyOutsideGroup is a key/value pair before the first header.
	KindKeyOutsideGroup
	// KindUnknownFactory is a header naming no registered factory.
	KindUnknownFactory
	// KindMissingName is a group without a "name" key, or with an empty one.
	KindMissingName
	// KindDuplicateName is a repeated "name" key, or two groups with the
	// same command name.
	KindDuplicateName
	// KindSingleInstance is a second group of a FlagSingle factory.
	KindSingleInstance
	// KindFactory is an error reported by a factory.
	KindFactory
	// KindAllocation is an allocation failure while building a command.
	KindAllocation
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax error"
	case KindKeyOutsideGroup:
		return "key outside group"
	case KindUnknownFactory:
		return "unknown command type"
	case KindMissingName:
		return "missing name"
	case KindDuplicateName:
		return "duplicate name"
	case KindSingleInstance:
		return "single instance"
	case KindFactory:
		return "invalid command"
	case KindAllocation:
		return "out of memory"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseError is a structural error in a commands file. Parsing stops at the
// first one.
type ParseError struct {
	File    string // may be empty for in-memory sources
	Line    int    // 1-based
	Kind    Kind
	Section string // section of the group being parsed, if any
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		fmt.Fprintf(&sb, "%s:%d: ", e.File, e.Line)
	} else {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	if e.Section != "" {
		fmt.Fprintf(&sb, "[%s] ", e.Section)
	}
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bar implements the single-line command bar front end.
//
// Enter evaluates the line through the shell, Up and Down walk the shell's
// history, Tab completes command names, Esc closes the completion list or
// quits. Every submitted line is one round-trip: the transient arena is
// cleared once the result has been taken for display.
//
// # Usage
//
//	m, err := bar.New(bar.Options{Shell: sh, Output: buf, Complete: app.Complete})
//	if err != nil {
//	    return err
//	}
//	_, err = bar.NewProgram(m).Run()
package bar

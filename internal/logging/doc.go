// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger shared by every cmdbar component.
//
// Logging is off unless a log file is configured, so the interactive front
// ends never mix log lines into their output.
//
// # Usage
//
//	logger, closeLog, err := logging.New(logging.Options{Level: "debug", File: path})
//	if err != nil {
//	    return err
//	}
//	defer closeLog()
package logging

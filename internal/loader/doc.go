// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package loader builds commands from commands files.
//
// A commands file is INI-shaped text. A [section] header opens a group whose
// section name selects a factory registered in the commands.Registry; the
// reserved key "name" names the command and every other key/value pair is
// handed to the factory. Blank lines and lines starting with # or ; are
// ignored; whitespace around '=' is trimmed and one pair of quotes around a
// value is removed.
//
//	[program]
//	name = notepad
//	path = C:\Windows\notepad.exe
//
// Parsing fails fast: the first structural problem is returned as a
// *ParseError carrying the file, line and Kind, and nothing built so far
// survives.
//
// # Usage
//
//	l := loader.New(reg, pools.Heap, logger)
//	cmds, err := l.LoadFile(path)
//	if err != nil {
//	    return err
//	}
//	err = loader.Register(reg, cmds)
package loader

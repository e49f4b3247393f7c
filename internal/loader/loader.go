// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package loader

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/miere43/cmdbar/internal/commands"
	"github.com/miere43/cmdbar/internal/memory"
	"github.com/miere43/cmdbar/internal/text"
	"github.com/miere43/cmdbar/internal/util"
)

// =============================================================================
// LOADER
// =============================================================================

// InfoSource resolves section names to factories. *commands.Registry
// implements it.
type InfoSource interface {
	FindInfo(dataName text.String) *commands.Info
}

// Loader builds commands from commands files.
type Loader struct {
	infos  InfoSource
	heap   memory.Allocator
	logger *zap.Logger
}

// New creates a loader. Command names are cloned into heap.
func New(infos InfoSource, heap memory.Allocator, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		infos:  infos,
		heap:   heap,
		logger: logger.With(zap.String("component", "loader")),
	}
}

// group is a section being collected.
type group struct {
	info    *commands.Info
	section text.String
	line    int
	name    text.String
	hasName bool
	keys    []text.String
	values  []text.String
}

// parser holds the state of one Parse call.
type parser struct {
	l       *Loader
	file    string
	out     []commands.Command
	names   []text.String
	singles map[*commands.Info]bool
	pending *group
}

// Parse builds one command per group of src. file only labels errors. On
// error every command built so far is disposed and the returned error is a
// *ParseError.
func (l *Loader) Parse(file string, src text.String) ([]commands.Command, error) {
	p := &parser{l: l, file: file, singles: make(map[*commands.Info]bool)}
	if err := p.run(src); err != nil {
		for _, cmd := range p.out {
			cmd.Dispose()
		}
		l.logger.Warn("commands file rejected", zap.String("file", file), zap.Error(err))
		return nil, err
	}
	l.logger.Debug("commands file parsed", zap.String("file", file), zap.Int("commands", len(p.out)))
	return p.out, nil
}

func (p *parser) run(src text.String) error {
	lineNo := 0
	for rest := src; !rest.IsEmpty(); {
		lineNo++
		var line text.String
		if nl := rest.IndexOf('\n'); nl >= 0 {
			line, rest = rest.View(0, nl), rest.ViewFrom(nl+1)
		} else {
			line, rest = rest, text.Empty
		}
		if err := p.line(lineNo, line); err != nil {
			return err
		}
	}
	return p.finish()
}

func (p *parser) line(n int, raw text.String) error {
	line := raw.Trimmed()
	if last := line.Len() - 1; last >= 0 && line.At(last) == '\r' {
		line = line.View(0, last).TrimmedRight()
	}
	if line.IsEmpty() || line.At(0) == '#' || line.At(0) == ';' {
		return nil
	}

	if line.At(0) == '[' {
		return p.header(n, line)
	}

	eq := line.IndexOf('=')
	if eq < 0 {
		return p.errorf(n, KindSyntax, nil, "expected [section] or key = value, got %q", line)
	}
	if p.pending == nil {
		return p.errorf(n, KindKeyOutsideGroup, nil, "key/value pair before the first [section]")
	}

	key := line.View(0, eq).Trimmed()
	value := unquote(line.ViewFrom(eq + 1).Trimmed())
	if key.IsEmpty() {
		return p.errorf(n, KindSyntax, nil, "missing key before '='")
	}

	g := p.pending
	if key.EqualsString("name", text.CaseSensitive) {
		if g.hasName {
			return p.errorf(n, KindDuplicateName, nil, "name given twice in one group")
		}
		if value.IsEmpty() {
			return p.errorf(n, KindMissingName, nil, "name is empty")
		}
		g.name, g.hasName = value, true
		return nil
	}
	g.keys = append(g.keys, key)
	g.values = append(g.values, value)
	return nil
}

func (p *parser) header(n int, line text.String) error {
	if err := p.finish(); err != nil {
		return err
	}

	if line.At(line.Len()-1) != ']' {
		return p.errorf(n, KindSyntax, nil, "section header is missing ']'")
	}
	section := line.View(1, line.Len()-2).Trimmed()
	if section.IsEmpty() {
		return p.errorf(n, KindSyntax, nil, "empty section name")
	}

	info := p.l.infos.FindInfo(section)
	if info == nil {
		return p.errorf(n, KindUnknownFactory, nil, "unknown command type %q", section)
	}
	if info.Flags&commands.FlagSingle != 0 && p.singles[info] {
		return p.errorf(n, KindSingleInstance, nil, "only one [%s] group is allowed", info.DataName)
	}
	p.singles[info] = true

	p.pending = &group{info: info, section: section, line: n}
	return nil
}

// finish builds the pending group, if any.
func (p *parser) finish() error {
	g := p.pending
	if g == nil {
		return nil
	}
	defer func() { p.pending = nil }()

	if !g.hasName {
		return p.groupErr(g, KindMissingName, nil, "group has no name")
	}
	for _, seen := range p.names {
		if seen.Equals(g.name, text.CaseInsensitive) {
			return p.groupErr(g, KindDuplicateName, nil, "command %q is defined twice", g.name)
		}
	}

	cmd, err := g.info.Create(g.keys, g.values)
	if err != nil {
		kind := KindFactory
		if errors.Is(err, memory.ErrOutOfMemory) {
			kind = KindAllocation
		}
		return p.groupErr(g, kind, err, "cannot create %q", g.name)
	}
	if cmd == nil {
		return p.groupErr(g, KindFactory, nil, "factory returned no command for %q", g.name)
	}

	name, err := g.name.Clone(p.l.heap)
	if err != nil {
		cmd.Dispose()
		return p.groupErr(g, KindAllocation, err, "cannot store name %q", g.name)
	}
	cmd.SetName(name)

	p.out = append(p.out, cmd)
	p.names = append(p.names, g.name)
	return nil
}

func (p *parser) errorf(n int, kind Kind, cause error, format string, args ...any) error {
	section := ""
	if p.pending != nil {
		section = p.pending.section.String()
	}
	return &ParseError{
		File:    p.file,
		Line:    n,
		Kind:    kind,
		Section: section,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// groupErr reports an error at the group's header line.
func (p *parser) groupErr(g *group, kind Kind, cause error, format string, args ...any) error {
	return &ParseError{
		File:    p.file,
		Line:    g.line,
		Kind:    kind,
		Section: g.section.String(),
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// unquote strips one pair of surrounding double quotes from a value that has
// no other quotes.
func unquote(v text.String) text.String {
	n := v.Len()
	if n < 2 || v.At(0) != '"' || v.At(n-1) != '"' {
		return v
	}
	inner := v.View(1, n-2)
	if inner.IndexOf('"') >= 0 {
		return v
	}
	return inner
}

// =============================================================================
// FILES
// =============================================================================

// LoadFile reads and parses a commands file.
func (l *Loader) LoadFile(path string) ([]commands.Command, error) {
	data, err := util.ReadTextFile(path)
	if err != nil {
		return nil, err
	}
	return l.Parse(path, text.WrapBytes(data))
}

// Register hands cmds to reg. When a command cannot be registered it and all
// following commands are disposed and the error is returned; commands
// registered before it stay in reg.
func Register(reg *commands.Registry, cmds []commands.Command) error {
	for i, cmd := range cmds {
		if err := reg.RegisterCommand(cmd); err != nil {
			name := cmd.Name().String()
			for _, rest := range cmds[i:] {
				rest.Dispose()
			}
			return fmt.Errorf("register %q: %w", name, err)
		}
	}
	return nil
}

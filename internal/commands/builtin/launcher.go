// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// =============================================================================
// PROCESS FLAGS
// =============================================================================

// ProcessFlags modify how a program is started.
type ProcessFlags uint8

const (
	// FlagHidden starts the program without a visible window (Windows).
	FlagHidden ProcessFlags = 1 << iota
	// FlagConsole gives the program its own console window (Windows).
	FlagConsole
	// FlagWait blocks the evaluation until the program exits.
	FlagWait
)

var flagNames = []struct {
	flag ProcessFlags
	name string
}{
	{FlagHidden, "hidden"},
	{FlagConsole, "console"},
	{FlagWait, "wait"},
}

// ParseProcessFlags parses a comma separated flag list such as
// "hidden, wait". Names are case-insensitive; blanks are ignored.
func ParseProcessFlags(s string) (ProcessFlags, error) {
	var flags ProcessFlags
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		found := false
		for _, fn := range flagNames {
			if strings.EqualFold(part, fn.name) {
				flags |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown process flag %q", part)
		}
	}
	return flags, nil
}

func (f ProcessFlags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, ",")
}

// =============================================================================
// LAUNCHER
// =============================================================================

// Process describes a program to start.
type Process struct {
	Path  string
	Args  []string
	Dir   string // working directory, "" = inherit
	Flags ProcessFlags
}

// Launcher starts processes and opens folders in the desktop file manager.
type Launcher interface {
	Start(p Process) error
	OpenFolder(path string) error
}

// OSLauncher launches through os/exec.
type OSLauncher struct {
	logger *zap.Logger
}

// NewOSLauncher creates a launcher. A nil logger disables logging.
func NewOSLauncher(logger *zap.Logger) *OSLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OSLauncher{logger: logger.With(zap.String("component", "launcher"))}
}

// Start starts p. Without FlagWait it returns as soon as the process is
// running and reaps it in the background.
func (l *OSLauncher) Start(p Process) error {
	cmd := exec.Command(p.Path, p.Args...)
	cmd.Dir = p.Dir
	configureProcess(cmd, p.Flags)

	l.logger.Info("starting process",
		zap.String("path", p.Path),
		zap.Strings("args", p.Args),
		zap.Stringer("flags", p.Flags))

	if p.Flags&FlagWait != 0 {
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("run %s: %w", p.Path, err)
		}
		return nil
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.Path, err)
	}
	go l.reap(cmd)
	return nil
}

// OpenFolder shows path in the platform file manager.
func (l *OSLauncher) OpenFolder(path string) error {
	cmd := folderCommand(path)
	l.logger.Info("opening folder", zap.String("path", path))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open folder %s: %w", path, err)
	}
	go l.reap(cmd)
	return nil
}

func (l *OSLauncher) reap(cmd *exec.Cmd) {
	if err := cmd.Wait(); err != nil {
		l.logger.Debug("process exited", zap.String("path", cmd.Path), zap.Error(err))
	}
}

var _ Launcher = (*OSLauncher)(nil)

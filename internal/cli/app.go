// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Application wiring: pools, registry, loader, history, shell and
// the commands file watcher.

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/miere43/cmdbar/internal/commands"
	"github.com/miere43/cmdbar/internal/commands/builtin"
	"github.com/miere43/cmdbar/internal/config"
	"github.com/miere43/cmdbar/internal/history"
	"github.com/miere43/cmdbar/internal/loader"
	"github.com/miere43/cmdbar/internal/logging"
	"github.com/miere43/cmdbar/internal/memory"
	"github.com/miere43/cmdbar/internal/shell"
	"github.com/miere43/cmdbar/internal/watch"
)

// =============================================================================
// APPLICATION
// =============================================================================

// AppOptions configures NewApp.
type AppOptions struct {
	// Config is required.
	Config *config.Config
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
	// Logger overrides the logger built from Config.Logging.
	Logger *zap.Logger
	// Launcher overrides the OS launcher used by program and directory
	// commands.
	Launcher builtin.Launcher
	// Verbose forces debug logging.
	Verbose bool
	// ErrOut receives verbose logs when no log file is configured.
	ErrOut io.Writer
}

// App owns every long-lived component of a cmdbar process.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Pools    *memory.Pools
	Registry *commands.Registry
	History  *history.History
	Loader   *loader.Loader
	Shell    *shell.Shell

	reloadMu sync.Mutex
	onReload func(count int, err error)

	env      builtin.Env
	watcher  watch.FileWatcher
	closeLog func() error
}

// NewApp builds the application. User commands are not loaded; call
// LoadCommands.
func NewApp(opts AppOptions) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("cli: config is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	logger, closeLog := opts.Logger, func() error { return nil }
	if logger == nil {
		var err error
		logger, closeLog, err = logging.New(logging.Options{
			Level:   cfg.Logging.Level,
			File:    cfg.Logging.File,
			Verbose: opts.Verbose,
			Stderr:  opts.ErrOut,
		})
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
	}

	pools := memory.NewPools(memory.PoolOptions{
		TransientSize: cfg.Shell.TransientArenaKB << 10,
		HeapLimit:     int64(cfg.Shell.HeapLimitMB) << 20,
		Logger:        logger,
	})

	launcher := opts.Launcher
	if launcher == nil {
		launcher = builtin.NewOSLauncher(logger)
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Pools:    pools,
		Registry: commands.NewRegistry(logger),
		History:  history.New(pools.Heap, cfg.Shell.HistorySize),
		env:      builtin.Env{Heap: pools.Heap, Launcher: launcher},
		closeLog: closeLog,
	}
	a.Loader = loader.New(a.Registry, pools.Heap, logger)

	if err := builtin.RegisterInfos(a.Registry, a.env); err != nil {
		a.Close()
		return nil, err
	}
	if err := builtin.RegisterCommands(a.Registry, pools.Heap); err != nil {
		a.Close()
		return nil, err
	}

	sh, err := shell.New(shell.Options{
		Registry: a.Registry,
		Pools:    pools,
		History:  a.History,
		Out:      out,
		Logger:   logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Shell = sh
	return a, nil
}

// CommandsPath returns the commands file in use.
func (a *App) CommandsPath() string {
	return a.Config.CommandsPath()
}

// LoadCommands parses the commands file and registers its commands. A
// missing file is not an error.
func (a *App) LoadCommands() error {
	path := a.CommandsPath()
	cmds, err := a.Loader.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		a.Logger.Info("no commands file", zap.String("path", path))
		return nil
	}
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	return a.Shell.WithRegistry(func(reg *commands.Registry) error {
		if err := loader.Register(reg, cmds); err != nil {
			return &ConfigError{Path: path, Err: err}
		}
		a.Logger.Info("commands loaded", zap.String("path", path), zap.Int("count", len(cmds)))
		return nil
	})
}

// Reload replaces every command with the built-ins plus the current content
// of the commands file. A file that fails to parse leaves the registered
// commands untouched.
func (a *App) Reload() (int, error) {
	path := a.CommandsPath()
	cmds, err := a.Loader.LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cmds, err = nil, nil
	}
	if err != nil {
		a.Logger.Warn("reload rejected", zap.String("path", path), zap.Error(err))
		return a.commandCount(), err
	}

	count := 0
	err = a.Shell.WithRegistry(func(reg *commands.Registry) error {
		defer func() { count = reg.Len() }()
		reg.UnregisterAllCommands()
		if err := builtin.RegisterCommands(reg, a.env.Heap); err != nil {
			for _, cmd := range cmds {
				cmd.Dispose()
			}
			return err
		}
		return loader.Register(reg, cmds)
	})
	if err != nil {
		a.Logger.Error("reload failed", zap.String("path", path), zap.Error(err))
		return count, err
	}
	a.Logger.Info("commands reloaded", zap.String("path", path), zap.Int("count", count))
	return count, nil
}

func (a *App) commandCount() int {
	count := 0
	_ = a.Shell.WithRegistry(func(reg *commands.Registry) error {
		count = reg.Len()
		return nil
	})
	return count
}

// Complete returns completions for line. Safe to call while the watcher
// reloads commands.
func (a *App) Complete(line string) []commands.Completion {
	var out []commands.Completion
	_ = a.Shell.WithRegistry(func(reg *commands.Registry) error {
		out = commands.NewCompleter(reg).Complete(line)
		return nil
	})
	return out
}

// CompleteLine returns full-line candidates for liner.
func (a *App) CompleteLine(line string) []string {
	var out []string
	_ = a.Shell.WithRegistry(func(reg *commands.Registry) error {
		out = commands.NewCompleter(reg).Line(line)
		return nil
	})
	return out
}

// Watch starts reloading the commands file when it changes, if enabled in
// the configuration.
func (a *App) Watch() error {
	if !a.Config.Commands.Watch || a.watcher != nil {
		return nil
	}
	debounce := time.Duration(a.Config.Commands.DebounceMS) * time.Millisecond
	w, err := watch.Start(a.CommandsPath(), debounce, func(string) {
		count, err := a.Reload()
		a.notifyReload(count, err)
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("watch commands file: %w", err)
	}
	a.watcher = w
	return nil
}

// SetOnReload installs fn to be called after every reload attempt triggered
// by the watcher, with the number of commands now registered. A nil fn
// removes the hook. Safe to call while the watcher is running.
func (a *App) SetOnReload(fn func(count int, err error)) {
	a.reloadMu.Lock()
	a.onReload = fn
	a.reloadMu.Unlock()
}

func (a *App) notifyReload(count int, err error) {
	a.reloadMu.Lock()
	fn := a.onReload
	a.reloadMu.Unlock()
	if fn != nil {
		fn(count, err)
	}
}

// Close stops the watcher and releases every component in reverse order of
// creation.
func (a *App) Close() error {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.Logger.Warn("close watcher", zap.Error(err))
		}
		a.watcher = nil
	}
	if a.Shell != nil {
		_ = a.Shell.WithRegistry(func(reg *commands.Registry) error {
			reg.UnregisterAllCommands()
			return nil
		})
	} else if a.Registry != nil {
		a.Registry.UnregisterAllCommands()
	}
	if a.History != nil {
		a.History.Dispose()
	}
	if a.Pools != nil {
		a.Pools.Close()
		if live := a.Pools.Heap.Stats().LiveBlocks; live != 0 {
			a.Logger.Warn("heap blocks still live at exit", zap.Int("blocks", live))
		}
	}
	_ = a.Logger.Sync()
	return a.closeLog()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// =============================================================================
// FILE WATCHER INTERFACE
// =============================================================================

// FileWatcher reports changes to a single file.
type FileWatcher interface {
	// Watch starts watching for file changes
	Watch() error

	// Close stops watching and releases resources
	Close() error
}

// ChangeFunc is called after the watched file changed and the debounce
// interval passed without further changes. It runs on the watcher's
// goroutine; calls are never concurrent.
type ChangeFunc func(path string)

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// FsnotifyWatcher implements FileWatcher using fsnotify. It watches the
// parent directory so that editors which save by renaming a temp file over
// the target are still seen.
type FsnotifyWatcher struct {
	path     string
	onChange ChangeFunc
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending time.Time // last change not yet reported, zero if none

	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// NewFsnotifyWatcher creates a new fsnotify-based watcher.
func NewFsnotifyWatcher(path string, debounce time.Duration, onChange ChangeFunc, logger *zap.Logger) (*FsnotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &FsnotifyWatcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		logger:   logger.With(zap.String("component", "watcher"), zap.String("path", path)),
		watcher:  watcher,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching for file changes.
func (fw *FsnotifyWatcher) Watch() error {
	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}

	fw.done.Add(2)
	go fw.processEvents()
	go fw.processPending()
	return nil
}

// processEvents processes file system events.
func (fw *FsnotifyWatcher) processEvents() {
	defer fw.done.Done()
	defer func() {
		if r := recover(); r != nil {
			fw.logger.Error("watcher panic", zap.Any("panic", r))
		}
	}()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				fw.logger.Debug("file event", zap.Stringer("op", event.Op))
				fw.mu.Lock()
				fw.pending = time.Now()
				fw.mu.Unlock()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// processPending reports the change once the debounce interval has passed.
func (fw *FsnotifyWatcher) processPending() {
	defer fw.done.Done()

	tick := fw.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case now := <-ticker.C:
			fw.mu.Lock()
			due := !fw.pending.IsZero() && now.Sub(fw.pending) >= fw.debounce
			if due {
				fw.pending = time.Time{}
			}
			fw.mu.Unlock()

			if due {
				fw.onChange(fw.path)
			}
		}
	}
}

// Close stops watching and waits for the watcher goroutines to exit.
func (fw *FsnotifyWatcher) Close() error {
	fw.cancel()
	err := fw.watcher.Close()
	fw.done.Wait()
	return err
}

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

// PollingWatcher implements FileWatcher by comparing modification time and
// size at a fixed interval.
type PollingWatcher struct {
	path     string
	interval time.Duration
	onChange ChangeFunc

	modTime time.Time
	size    int64
	exists  bool

	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup
}

// NewPollingWatcher creates a new polling-based watcher.
func NewPollingWatcher(path string, interval time.Duration, onChange ChangeFunc) *PollingWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &PollingWatcher{
		path:     filepath.Clean(path),
		interval: interval,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Watch records the current state and starts polling.
func (pw *PollingWatcher) Watch() error {
	pw.snapshot()
	pw.done.Add(1)
	go pw.poll()
	return nil
}

// snapshot records the file state and reports whether it changed.
func (pw *PollingWatcher) snapshot() bool {
	info, err := os.Stat(pw.path)
	exists := err == nil
	var modTime time.Time
	var size int64
	if exists {
		modTime, size = info.ModTime(), info.Size()
	}

	changed := exists != pw.exists || !modTime.Equal(pw.modTime) || size != pw.size
	pw.exists, pw.modTime, pw.size = exists, modTime, size
	return changed
}

func (pw *PollingWatcher) poll() {
	defer pw.done.Done()
	ticker := time.NewTicker(pw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return
		case <-ticker.C:
			if pw.snapshot() {
				pw.onChange(pw.path)
			}
		}
	}
}

// Close stops polling.
func (pw *PollingWatcher) Close() error {
	pw.cancel()
	pw.done.Wait()
	return nil
}

// =============================================================================
// WATCHER FACTORY
// =============================================================================

// PollInterval is used when fsnotify is unavailable.
const PollInterval = 2 * time.Second

// Start watches path with fsnotify, falling back to polling when the
// platform watcher cannot be created.
func Start(path string, debounce time.Duration, onChange ChangeFunc, logger *zap.Logger) (FileWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := NewFsnotifyWatcher(path, debounce, onChange, logger)
	if err == nil {
		if err = fw.Watch(); err == nil {
			return fw, nil
		}
		fw.Close()
	}
	logger.Warn("fsnotify unavailable, polling instead", zap.String("path", path), zap.Error(err))

	pw := NewPollingWatcher(path, PollInterval, onChange)
	if err := pw.Watch(); err != nil {
		return nil, err
	}
	return pw, nil
}

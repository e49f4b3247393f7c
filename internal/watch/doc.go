// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch reports changes to the commands file so it can be reloaded
// while cmdbar runs.
//
// # Key Types
//
//   - FsnotifyWatcher: Event-driven watcher with debounce
//   - PollingWatcher: Fallback that compares mtime and size
//
// # Usage
//
//	w, err := watch.Start(path, 250*time.Millisecond, app.Reload, logger)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
package watch

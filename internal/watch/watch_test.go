// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFsnotifyWatcher_ReportsDebouncedChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.ini")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	var calls atomic.Int32
	fw, err := NewFsnotifyWatcher(path, 50*time.Millisecond, func(p string) {
		assert.Equal(t, filepath.Clean(path), p)
		calls.Add(1)
	}, nil)
	require.NoError(t, err)
	require.NoError(t, fw.Watch())
	defer fw.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('b' + i)}, 0644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "a burst of writes is reported once")
}

func TestFsnotifyWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "commands.ini")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	var calls atomic.Int32
	fw, err := NewFsnotifyWatcher(path, 20*time.Millisecond, func(string) { calls.Add(1) }, nil)
	require.NoError(t, err)
	require.NoError(t, fw.Watch())
	defer fw.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestPollingWatcher_DetectsChangeAndRemoval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.ini")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	var calls atomic.Int32
	pw := NewPollingWatcher(path, 20*time.Millisecond, func(string) { calls.Add(1) })
	require.NoError(t, pw.Watch())
	defer pw.Close()

	require.NoError(t, os.WriteFile(path, []byte("longer"), 0644))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestStart_ReturnsWorkingWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.ini")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	var calls atomic.Int32
	w, err := Start(path, 20*time.Millisecond, func(string) { calls.Add(1) }, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("changed"), 0644))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	assert.NoError(t, w.Close())
}

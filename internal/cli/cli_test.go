// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miere43/cmdbar/internal/commands/builtin"
	"github.com/miere43/cmdbar/internal/config"
	"github.com/miere43/cmdbar/internal/loader"
	"github.com/miere43/cmdbar/internal/shell"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fakeLauncher struct {
	mu      sync.Mutex
	started []builtin.Process
	folders []string
}

func (l *fakeLauncher) Start(p builtin.Process) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.started = append(l.started, p)
	return nil
}

func (l *fakeLauncher) OpenFolder(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.folders = append(l.folders, path)
	return nil
}

const testCommands = `[program]
name = edit
path = /usr/bin/editor
description = Open the editor

[directory]
name = tmp
path = /tmp
`

type result struct {
	out  string
	err  string
	code int
}

// run executes the command tree with HOME pointed at a temp dir.
func run(t *testing.T, stdin string, launcher builtin.Launcher, args ...string) result {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", os.Getenv("HOME"))
	ForceColorsEnabled(false)

	var out, errOut bytes.Buffer
	o := &rootOptions{
		streams:  Streams{In: strings.NewReader(stdin), Out: &out, Err: &errOut},
		launcher: launcher,
	}
	cmd := newRootCommand(o)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	DisplayError(&errOut, err)
	return result{out: out.String(), err: errOut.String(), code: GetExitCode(err)}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestApp(t *testing.T, commandsFile string) (*App, *bytes.Buffer, *fakeLauncher) {
	t.Helper()
	cfg := config.Default()
	cfg.Commands.File = commandsFile
	cfg.Commands.DebounceMS = 20

	var out bytes.Buffer
	launcher := &fakeLauncher{}
	app, err := NewApp(AppOptions{Config: cfg, Out: &out, Launcher: launcher})
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app, &out, launcher
}

// =============================================================================
// EXIT CODE TESTS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"usage", NewUsageError("bad"), ExitUsageError},
		{"config", &ConfigError{Err: errors.New("bad toml")}, ExitConfigError},
		{"parse", &loader.ParseError{Line: 3, Kind: loader.KindSyntax}, ExitConfigError},
		{"validate", config.ValidateErrors{{Field: "shell.mode"}}, ExitConfigError},
		{"not found", &shell.Error{Kind: shell.KindCommandNotFound}, ExitNotFoundError},
		{"command failed", &shell.Error{Kind: shell.KindCommandFailed}, ExitGeneralError},
		{"reported", &ReportedError{Err: &shell.Error{Kind: shell.KindCommandNotFound}}, ExitNotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError_SkipsReported(t *testing.T) {
	ForceColorsEnabled(false)
	var buf bytes.Buffer
	DisplayError(&buf, &ReportedError{Err: errors.New("shown")})
	assert.Empty(t, buf.String())

	DisplayError(&buf, errors.New("boom"))
	assert.Equal(t, "error: boom\n", buf.String())
}

// =============================================================================
// SUBCOMMAND TESTS
// =============================================================================

func TestEval(t *testing.T) {
	r := run(t, "", nil, "eval", "echo", "hello", "world")
	assert.Equal(t, ExitSuccess, r.code, r.err)
	assert.Equal(t, "hello world\n", r.out)
}

func TestEval_FlagsAfterCommandAreArguments(t *testing.T) {
	r := run(t, "", nil, "eval", "echo", "-n", "x")
	assert.Equal(t, ExitSuccess, r.code, r.err)
	assert.Equal(t, "-n x\n", r.out)
}

func TestEval_NotFound(t *testing.T) {
	r := run(t, "", nil, "eval", "nope")
	assert.Equal(t, ExitNotFoundError, r.code)
	assert.Contains(t, r.err, `command "nope" not found`)
}

func TestEval_RequiresCommand(t *testing.T) {
	r := run(t, "", nil, "eval")
	assert.Equal(t, ExitUsageError, r.code)
}

func TestEval_ConfiguredProgram(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "commands.ini", testCommands)
	launcher := &fakeLauncher{}

	r := run(t, "", launcher, "--commands", path, "eval", "EDIT", "notes.txt")
	require.Equal(t, ExitSuccess, r.code, r.err)
	require.Len(t, launcher.started, 1)
	assert.Equal(t, "/usr/bin/editor", launcher.started[0].Path)
	assert.Equal(t, []string{"notes.txt"}, launcher.started[0].Args)
}

func TestEval_VerboseLogsToStderrWithoutLogFile(t *testing.T) {
	r := run(t, "", nil, "-v", "eval", "echo", "hi")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Equal(t, "hi\n", r.out)
	assert.Contains(t, r.err, "command registered")

	r = run(t, "", nil, "eval", "echo", "hi")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Empty(t, r.err)
}

func TestEval_ArgumentsWithSpacesStayWhole(t *testing.T) {
	r := run(t, "", nil, "eval", "echo", "a  b", "c")
	assert.Equal(t, ExitSuccess, r.code, r.err)
	assert.Equal(t, "a  b c\n", r.out)

	dir := t.TempDir()
	path := writeFile(t, dir, "commands.ini", testCommands)
	launcher := &fakeLauncher{}

	r = run(t, "", launcher, "--commands", path, "eval", "edit", `C:\Program Files\x.exe`, "--flag")
	require.Equal(t, ExitSuccess, r.code, r.err)
	require.Len(t, launcher.started, 1)
	assert.Equal(t, []string{`C:\Program Files\x.exe`, "--flag"}, launcher.started[0].Args)
}

func TestJoinArgs(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"echo"}, "echo"},
		{[]string{"echo", "a", "b"}, "echo a b"},
		{[]string{"echo", "a b"}, `echo "a b"`},
		{[]string{"echo", "tab\there"}, "echo \"tab\there\""},
		{[]string{"echo", ""}, "echo "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinArgs(tt.args), "args %q", tt.args)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "commands.ini", testCommands)

	r := run(t, "", nil, "check", path)
	assert.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "edit")
	assert.Contains(t, r.out, "Open the editor")
	assert.Contains(t, r.out, "ok: 2 commands")
}

func TestCheck_ReportsParseErrorWithLine(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.ini", "[program]\nname = a\npath = x\n[nosuch]\nname = b\n")

	r := run(t, "", nil, "check", path)
	assert.Equal(t, ExitConfigError, r.code)
	assert.Contains(t, r.err, path+":4")
}

func TestCheck_MissingFile(t *testing.T) {
	r := run(t, "", nil, "check", filepath.Join(t.TempDir(), "missing.ini"))
	assert.Equal(t, ExitConfigError, r.code)
}

func TestInit_WritesFilesAndRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	cmdPath := filepath.Join(dir, "commands.ini")

	r := run(t, "", nil, "--config", cfgPath, "--commands", cmdPath, "init")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.FileExists(t, cfgPath)
	assert.FileExists(t, cmdPath)

	_, err := config.LoadFromPath(cfgPath)
	assert.NoError(t, err, "written config loads back")

	r = run(t, "", nil, "--config", cfgPath, "--commands", cmdPath, "init")
	assert.Equal(t, ExitGeneralError, r.code)
	assert.Contains(t, r.err, "--force")

	r = run(t, "", nil, "--config", cfgPath, "--commands", cmdPath, "init", "--force")
	assert.Equal(t, ExitSuccess, r.code, r.err)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "commands.ini", testCommands)

	r := run(t, "", nil, "--commands", path, "list")
	require.Equal(t, ExitSuccess, r.code, r.err)
	for _, name := range []string{"echo", "edit", "help", "quit", "tmp"} {
		assert.Contains(t, r.out, name)
	}
}

func TestList_DuplicateOfBuiltinIsConfigError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "commands.ini", "[directory]\nname = Help\npath = /tmp\n")

	r := run(t, "", nil, "--commands", path, "list")
	assert.Equal(t, ExitConfigError, r.code)
}

func TestConfigCommand(t *testing.T) {
	r := run(t, "", nil, "--mode", "bar", "config")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, `mode = "bar"`)
}

func TestInvalidMode(t *testing.T) {
	r := run(t, "", nil, "--mode", "window", "config")
	assert.Equal(t, ExitConfigError, r.code)
}

func TestVersion(t *testing.T) {
	r := run(t, "", nil, "version")
	assert.Contains(t, r.out, "cmdbar "+Version)
}

func TestUsageErrors(t *testing.T) {
	assert.Equal(t, ExitUsageError, run(t, "", nil, "bogus").code)
	assert.Equal(t, ExitUsageError, run(t, "", nil, "--no-such-flag").code)
	assert.Equal(t, ExitUsageError, run(t, "", nil, "check", "a", "b").code)
}

// =============================================================================
// BATCH MODE TESTS
// =============================================================================

func TestBatch_EvaluatesEveryLine(t *testing.T) {
	r := run(t, "echo one\n\necho two\n", nil)
	assert.Equal(t, ExitSuccess, r.code, r.err)
	assert.Equal(t, "one\ntwo\n", r.out)
}

func TestBatch_ExitCodeReflectsLastFailure(t *testing.T) {
	r := run(t, "nope\necho after\n", nil)
	assert.Equal(t, ExitNotFoundError, r.code)
	assert.Equal(t, "after\n", r.out)
	assert.Equal(t, 1, strings.Count(r.err, "not found"), "failure is reported once")
}

func TestBatch_QuitStopsEvaluation(t *testing.T) {
	r := run(t, "echo one\nquit\necho two\n", nil)
	assert.Equal(t, ExitSuccess, r.code, r.err)
	assert.Equal(t, "one\n", r.out)
}

// =============================================================================
// APP TESTS
// =============================================================================

func TestApp_LoadCommandsMissingFileIsFine(t *testing.T) {
	app, _, _ := newTestApp(t, filepath.Join(t.TempDir(), "missing.ini"))
	require.NoError(t, app.LoadCommands())
	assert.Equal(t, 3, app.Registry.Len(), "only the built-ins")
}

func TestApp_CloseReleasesHeap(t *testing.T) {
	path := writeFile(t, t.TempDir(), "commands.ini", testCommands)
	cfg := config.Default()
	cfg.Commands.File = path

	app, err := NewApp(AppOptions{Config: cfg, Out: &bytes.Buffer{}, Launcher: &fakeLauncher{}})
	require.NoError(t, err)
	require.NoError(t, app.LoadCommands())
	require.True(t, app.Shell.EvaluateString("echo a b"))
	require.False(t, app.Shell.EvaluateString("nope"))

	require.NoError(t, app.Close())
	assert.Zero(t, app.Pools.Heap.Stats().LiveBlocks)
}

func TestApp_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "commands.ini", testCommands)
	app, _, launcher := newTestApp(t, path)
	require.NoError(t, app.LoadCommands())
	require.Equal(t, 5, app.Registry.Len())

	writeFile(t, dir, "commands.ini", "[directory]\nname = home\npath = \""+dir+"\"\n")
	count, err := app.Reload()
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Nil(t, app.Registry.Find("edit"))

	require.True(t, app.Shell.EvaluateString("home"), app.Shell.ErrorMessage())
	assert.Equal(t, []string{filepath.Clean(dir)}, launcher.folders)
}

func TestApp_ReloadRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "commands.ini", testCommands)
	app, _, _ := newTestApp(t, path)
	require.NoError(t, app.LoadCommands())

	writeFile(t, dir, "commands.ini", "name = orphan\n")
	count, err := app.Reload()
	require.Error(t, err)
	assert.Equal(t, 5, count)
	assert.NotNil(t, app.Registry.Find("edit"), "previous commands stay registered")
}

func TestApp_WatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "commands.ini", testCommands)
	app, _, _ := newTestApp(t, path)
	require.NoError(t, app.LoadCommands())

	reloaded := make(chan int, 4)
	app.SetOnReload(func(count int, err error) {
		if err == nil {
			reloaded <- count
		}
	})
	require.NoError(t, app.Watch())

	writeFile(t, dir, "commands.ini", "[directory]\nname = home\npath = /home\n")

	select {
	case count := <-reloaded:
		assert.Equal(t, 4, count)
	case <-time.After(5 * time.Second):
		t.Fatal("commands file change was not picked up")
	}
	assert.NotNil(t, app.Registry.Find("home"))
}

func TestApp_SetOnReloadWhileWatching(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "commands.ini", testCommands)
	app, _, _ := newTestApp(t, path)
	require.NoError(t, app.LoadCommands())
	require.NoError(t, app.Watch())

	// Swap the hook from another goroutine while reloads fire; run with
	// -race to catch unsynchronized access.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				app.SetOnReload(func(int, error) {})
				app.SetOnReload(nil)
			}
		}
	}()
	for i := 0; i < 5; i++ {
		writeFile(t, dir, "commands.ini", fmt.Sprintf("[directory]\nname = d%d\npath = /tmp\n", i))
		time.Sleep(20 * time.Millisecond)
	}
	close(stop)
	wg.Wait()

	reloaded := make(chan int, 16)
	app.SetOnReload(func(count int, err error) {
		if err == nil {
			reloaded <- count
		}
	})
	writeFile(t, dir, "commands.ini", "[directory]\nname = last\npath = /tmp\n")
	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("hook installed while watching was not called")
	}
}

func TestGetTerminalWidth_NeverBelowMinimum(t *testing.T) {
	w := GetTerminalWidth()
	assert.GreaterOrEqual(t, w, MinTerminalWidth)
	if !IsStdoutTTY() {
		assert.Equal(t, DefaultTerminalWidth, w)
	}
}

func TestList_FitsTerminalWidth(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("x", 200)
	path := writeFile(t, dir, "commands.ini", "[directory]\nname = tmp\npath = /tmp\ndescription = "+long+"\n")

	r := run(t, "", nil, "--commands", path, "list")
	require.Equal(t, ExitSuccess, r.code, r.err)
	for _, line := range strings.Split(strings.TrimSuffix(r.out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), GetTerminalWidth(), line)
	}
	assert.Contains(t, r.out, "...")
}

func TestApp_Complete(t *testing.T) {
	app, _, _ := newTestApp(t, filepath.Join(t.TempDir(), "missing.ini"))

	comps := app.Complete("he")
	require.Len(t, comps, 1)
	assert.Equal(t, "help", comps[0].Value)
	assert.Equal(t, []string{"help "}, app.CompleteLine("he"))
}

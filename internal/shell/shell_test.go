// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miere43/cmdbar/internal/commands"
	"github.com/miere43/cmdbar/internal/history"
	"github.com/miere43/cmdbar/internal/memory"
	"github.com/miere43/cmdbar/internal/text"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type funcCommand struct {
	commands.Base
	run  func(state *commands.State, args []text.String) error
	args []string
}

func (c *funcCommand) Execute(state *commands.State, args []text.String) error {
	c.args = c.args[:0]
	for _, a := range args {
		c.args = append(c.args, a.String())
	}
	if c.run != nil {
		return c.run(state, args)
	}
	return nil
}

type fixture struct {
	shell *Shell
	reg   *commands.Registry
	pools *memory.Pools
	hist  *history.History
	out   *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pools := memory.NewPools(memory.PoolOptions{TransientSize: 1024})
	reg := commands.NewRegistry(nil)
	hist := history.New(pools.Heap, 16)
	out := &bytes.Buffer{}

	sh, err := New(Options{Registry: reg, Pools: pools, History: hist, Out: out})
	require.NoError(t, err)

	t.Cleanup(func() {
		reg.UnregisterAllCommands()
		hist.Dispose()
		pools.Close()
	})
	return &fixture{shell: sh, reg: reg, pools: pools, hist: hist, out: out}
}

func (f *fixture) register(t *testing.T, name string, run func(*commands.State, []text.String) error) *funcCommand {
	t.Helper()
	owned, err := text.Wrap(name).Clone(f.pools.Heap)
	require.NoError(t, err)
	cmd := &funcCommand{run: run}
	cmd.SetName(owned)
	require.NoError(t, f.reg.RegisterCommand(cmd))
	return cmd
}

// =============================================================================
// DISPATCH
// =============================================================================

func TestNew_RequiresRegistryAndPools(t *testing.T) {
	_, err := New(Options{Pools: memory.NewPools(memory.PoolOptions{})})
	assert.Error(t, err)
	_, err = New(Options{Registry: commands.NewRegistry(nil)})
	assert.Error(t, err)
}

func TestEvaluate_CaseInsensitiveDispatch(t *testing.T) {
	f := newFixture(t)
	cmd := f.register(t, "Open_Dir", nil)

	require.True(t, f.shell.EvaluateString("open_dir somepath"))
	assert.Equal(t, []string{"somepath"}, cmd.args)
	assert.Nil(t, f.shell.Err())
	assert.Equal(t, "", f.shell.ErrorMessage())
}

func TestEvaluate_QuotedArguments(t *testing.T) {
	f := newFixture(t)
	cmd := f.register(t, "run_app", nil)

	require.True(t, f.shell.EvaluateString(`run_app "C:\Program Files\x.exe" --flag`))
	assert.Equal(t, []string{`C:\Program Files\x.exe`, "--flag"}, cmd.args)
}

func TestEvaluate_InvalidInput(t *testing.T) {
	f := newFixture(t)
	looked := false
	f.shell.SetBeforeRun(func(commands.Command) { looked = true })

	for _, in := range []string{"", "   ", "\t\n", `""`} {
		assert.False(t, f.shell.EvaluateString(in), "input %q", in)
		err := f.shell.Err()
		require.NotNil(t, err)
		assert.Equal(t, KindInvalidInput, err.Kind)
		assert.Equal(t, "invalid input", f.shell.ErrorMessage())
	}
	assert.False(t, looked)
}

func TestEvaluate_CommandNotFound(t *testing.T) {
	f := newFixture(t)
	f.register(t, "help", nil)

	assert.False(t, f.shell.EvaluateString("nope arg"))
	err := f.shell.Err()
	require.NotNil(t, err)
	assert.Equal(t, KindCommandNotFound, err.Kind)
	assert.Equal(t, "nope", err.Command)
	assert.Contains(t, err.Message, `"nope"`)
	assert.True(t, IsNotFound(f.shell.Run(text.Wrap("nope"))))
}

func TestEvaluate_BeforeRunFiresBeforeExecute(t *testing.T) {
	f := newFixture(t)
	var order []string
	cmd := f.register(t, "go", func(*commands.State, []text.String) error {
		order = append(order, "execute")
		return nil
	})
	f.shell.SetBeforeRun(func(c commands.Command) {
		assert.Same(t, cmd, c)
		order = append(order, "before")
	})

	require.True(t, f.shell.EvaluateString("GO"))
	assert.Equal(t, []string{"before", "execute"}, order)
}

func TestEvaluate_CommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		run      func(*commands.State, []text.String) error
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "returned error",
			run:      func(*commands.State, []text.String) error { return errors.New("disk on fire") },
			wantKind: KindCommandFailed,
			wantMsg:  "fail: disk on fire",
		},
		{
			name: "allocation failure",
			run: func(*commands.State, []text.String) error {
				return fmt.Errorf("copy path: %w", memory.ErrOutOfMemory)
			},
			wantKind: KindAllocationFailure,
			wantMsg:  "fail: copy path: " + memory.ErrOutOfMemory.Error(),
		},
		{
			name: "message recorded in state",
			run: func(s *commands.State, _ []text.String) error {
				s.Failf("bad argument %d", 2)
				return nil
			},
			wantKind: KindCommandFailed,
			wantMsg:  "bad argument 2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.register(t, "fail", tc.run)

			err := f.shell.Run(text.Wrap("fail"))
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, KindOf(err))
			assert.Equal(t, tc.wantMsg, f.shell.ErrorMessage())
		})
	}
}

func TestEvaluate_ErrorUnwrapsCause(t *testing.T) {
	f := newFixture(t)
	cause := errors.New("cause")
	f.register(t, "x", func(*commands.State, []text.String) error { return cause })

	err := f.shell.Run(text.Wrap("x"))
	assert.ErrorIs(t, err, cause)
}

func TestEvaluate_StateResetBetweenCalls(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ok", nil)

	assert.False(t, f.shell.EvaluateString("missing"))
	assert.True(t, f.shell.EvaluateString("ok"))
	assert.Nil(t, f.shell.Err())
}

func TestEvaluate_Output(t *testing.T) {
	f := newFixture(t)
	f.register(t, "say", func(s *commands.State, args []text.String) error {
		_, err := fmt.Fprintf(s.Out, "%s\n", args[0])
		return err
	})

	require.True(t, f.shell.EvaluateString("say hi"))
	assert.Equal(t, "hi\n", f.out.String())
}

func TestEvaluate_QuitRequested(t *testing.T) {
	f := newFixture(t)
	f.register(t, "quit", func(s *commands.State, _ []text.String) error {
		s.RequestQuit()
		return nil
	})
	f.register(t, "stay", nil)

	require.True(t, f.shell.EvaluateString("quit"))
	assert.True(t, f.shell.QuitRequested())
	require.True(t, f.shell.EvaluateString("stay"))
	assert.False(t, f.shell.QuitRequested())
}

// =============================================================================
// REENTRANCY
// =============================================================================

func TestEvaluate_NestedCallIsRejected(t *testing.T) {
	f := newFixture(t)
	var inner error
	f.register(t, "inner", nil)
	f.register(t, "outer", func(*commands.State, []text.String) error {
		inner = f.shell.Run(text.Wrap("inner"))
		return nil
	})

	require.True(t, f.shell.EvaluateString("outer"))
	assert.Equal(t, KindReentrant, KindOf(inner))
	assert.Nil(t, f.shell.Err(), "the outer evaluation keeps its own result")
}

func TestEvaluate_ConcurrentCallIsRejected(t *testing.T) {
	f := newFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.register(t, "block", func(*commands.State, []text.String) error {
		close(entered)
		<-release
		return nil
	})
	f.register(t, "other", nil)

	done := make(chan bool)
	go func() { done <- f.shell.EvaluateString("block") }()

	<-entered
	err := f.shell.Run(text.Wrap("other"))
	close(release)

	assert.Equal(t, KindReentrant, KindOf(err))
	assert.True(t, <-done)
}

// =============================================================================
// HISTORY AND ROUND-TRIPS
// =============================================================================

func TestEvaluate_SavesNonBlankLines(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ok", nil)

	f.shell.EvaluateString("ok 1")
	f.shell.EvaluateString("   ")
	f.shell.EvaluateString("unknown")

	assert.Equal(t, []string{"ok 1", "unknown"}, f.hist.Strings())
	assert.Same(t, f.hist, f.shell.History())
}

func TestEndRoundTrip_ClearsTransientKeepsMessage(t *testing.T) {
	f := newFixture(t)

	require.False(t, f.shell.EvaluateString("missing"))
	require.Greater(t, f.pools.Transient.Stats().Used, 0)

	f.shell.EndRoundTrip()
	assert.Equal(t, 0, f.pools.Transient.Stats().Used)
	assert.Contains(t, f.shell.ErrorMessage(), "missing")

	assert.False(t, f.shell.EvaluateString("again"))
	assert.Contains(t, f.shell.ErrorMessage(), "again")
}

func TestEvaluate_ErrorMessageFallsBackWhenTransientIsExhausted(t *testing.T) {
	heap := memory.NewHeap(0)
	pools := &memory.Pools{
		Heap:      heap,
		Transient: memory.NewArena(0, memory.WithDelegate(memory.NewHeap(1))),
	}
	reg := commands.NewRegistry(nil)
	sh, err := New(Options{Registry: reg, Pools: pools})
	require.NoError(t, err)

	assert.False(t, sh.EvaluateString("missing"))
	assert.Equal(t, KindCommandNotFound, sh.Err().Kind)
	assert.Contains(t, sh.ErrorMessage(), "out of memory")
}

func TestWithRegistry(t *testing.T) {
	f := newFixture(t)
	f.register(t, "old", nil)

	err := f.shell.WithRegistry(func(r *commands.Registry) error {
		r.UnregisterAllCommands()
		return nil
	})
	require.NoError(t, err)
	assert.False(t, f.shell.EvaluateString("old"))

	err = f.shell.WithRegistry(func(*commands.Registry) error { return errors.New("nope") })
	assert.EqualError(t, err, "shell: nope")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "command not found", KindCommandNotFound.String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}

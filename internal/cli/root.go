// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// root.go - Cobra command tree: interactive shell, eval, check, init, list,
// config and version.

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/miere43/cmdbar/internal/commands"
	"github.com/miere43/cmdbar/internal/commands/builtin"
	"github.com/miere43/cmdbar/internal/config"
	"github.com/miere43/cmdbar/internal/loader"
	"github.com/miere43/cmdbar/internal/text"
	"github.com/miere43/cmdbar/internal/util"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Streams are the standard streams a command tree reads and writes.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// rootOptions holds the global flags.
type rootOptions struct {
	configPath   string
	commandsPath string
	mode         string
	verbose      bool
	noColor      bool

	streams  Streams
	launcher builtin.Launcher
}

// Execute runs the command tree on the process streams and returns the exit
// code.
func Execute() int {
	cmd := NewRootCommand(Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	err := cmd.Execute()
	if err != nil {
		DisplayError(os.Stderr, err)
	}
	return GetExitCode(err)
}

// NewRootCommand builds the cmdbar command tree.
func NewRootCommand(streams Streams) *cobra.Command {
	return newRootCommand(&rootOptions{streams: streams})
}

func newRootCommand(o *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "cmdbar",
		Short: "Keyboard-driven command shell",
		Long: `cmdbar reads a line, looks up the first word as a command and runs it
with the remaining words as arguments. Commands are built in or declared in
a commands file (~/.cmdbar/commands.ini by default).

Without a subcommand cmdbar starts an interactive session. When stdin is not
a terminal every input line is evaluated in turn.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runInteractive()
		},
	}
	root.SetIn(o.streams.In)
	root.SetOut(o.streams.Out)
	root.SetErr(o.streams.Err)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Reason: err.Error()}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "config file (default ~/.cmdbar/config.toml)")
	flags.StringVar(&o.commandsPath, "commands", "", "commands file, overrides [commands] file")
	flags.StringVar(&o.mode, "mode", "", "interactive front end: line or bar")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log at debug level (to stderr unless [logging] file is set)")
	flags.BoolVar(&o.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newEvalCommand(o),
		newCheckCommand(o),
		newInitCommand(o),
		newListCommand(o),
		newConfigCommand(o),
		newVersionCommand(),
	)
	return root
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return NewUsageError("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadConfig loads the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, &ConfigError{Path: o.configPath, Err: err}
	}

	if o.commandsPath != "" {
		cfg.Commands.File = o.commandsPath
	}
	if o.mode != "" {
		cfg.Shell.Mode = strings.ToLower(o.mode)
	}
	if o.noColor || cfg.UI.NoColor {
		DisableColors()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Path: o.configPath, Err: err}
	}
	return cfg, nil
}

// newApp loads the config and builds the application with out as the
// command output.
func (o *rootOptions) newApp(out io.Writer) (*App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return NewApp(AppOptions{
		Config:   cfg,
		Out:      out,
		Launcher: o.launcher,
		Verbose:  o.verbose,
		ErrOut:   o.streams.Err,
	})
}

// interactive reports whether input comes from a terminal.
func (o *rootOptions) interactive() bool {
	f, ok := o.streams.In.(*os.File)
	return ok && f == os.Stdin && IsTTY()
}

// =============================================================================
// INTERACTIVE SESSION
// =============================================================================

func (o *rootOptions) runInteractive() error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	var barOutput *bytes.Buffer
	out := o.streams.Out
	if cfg.Shell.Mode == config.ModeBar && o.interactive() {
		barOutput = &bytes.Buffer{}
		out = barOutput
	}

	app, err := NewApp(AppOptions{
		Config:   cfg,
		Out:      out,
		Launcher: o.launcher,
		Verbose:  o.verbose,
		ErrOut:   o.streams.Err,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.LoadCommands(); err != nil {
		return err
	}

	if !o.interactive() {
		return app.RunBatch(o.streams.In, o.streams.Err)
	}

	if err := app.Watch(); err != nil {
		app.Logger.Warn(err.Error())
	}
	if barOutput != nil {
		return app.RunBar(barOutput)
	}
	return app.RunLine(o.streams.Err)
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

// joinArgs rebuilds an input line from already split arguments. Arguments
// containing whitespace are wrapped in double quotes so the tokenizer keeps
// them whole. The line syntax has no escape for a literal quote.
func joinArgs(args []string) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if strings.ContainsAny(arg, " \t\r\n") {
			sb.WriteByte('"')
			sb.WriteString(arg)
			sb.WriteByte('"')
			continue
		}
		sb.WriteString(arg)
	}
	return sb.String()
}

func newEvalCommand(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <command> [args...]",
		Short: "Evaluate one line and exit",
		Long: `Joins the arguments with single spaces and evaluates the result as one
input line. Arguments containing whitespace are quoted so they stay one
argument. The exit code is 7 when the command does not exist and 1 when it
fails.`,
		Example: "  cmdbar eval echo hello\n  cmdbar eval edit notes.txt",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return NewUsageError("eval requires a command")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.newApp(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.LoadCommands(); err != nil {
				return err
			}
			err = app.Shell.Run(text.Wrap(joinArgs(args)))
			app.Shell.EndRoundTrip()
			return err
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newCheckCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a commands file",
		Long: `Parses a commands file and lists the commands it declares. The first
error is reported with its file and line. Defaults to the configured
commands file.`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.newApp(io.Discard)
			if err != nil {
				return err
			}
			defer app.Close()

			path := app.CommandsPath()
			if len(args) == 1 {
				path = args[0]
			}

			cmds, err := app.Loader.LoadFile(path)
			if err != nil {
				var parseErr *loader.ParseError
				if errors.As(err, &parseErr) {
					return err
				}
				return &ConfigError{Path: path, Err: err}
			}
			defer func() {
				for _, c := range cmds {
					c.Dispose()
				}
			}()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render(path))
			rows := make([][]string, 0, len(cmds))
			for _, c := range cmds {
				rows = append(rows, []string{c.Name().String(), commands.KindOf(c), commands.DescriptionOf(c)})
			}
			fmt.Fprint(out, util.FitColumns(rows, 2, GetTerminalWidth(), MinTerminalWidth/2))
			fmt.Fprintln(out, SuccessStyle.Render(fmt.Sprintf("ok: %d commands", len(cmds))))
			return nil
		},
	}
}

func newInitCommand(o *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config and a sample commands file",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := o.configPath
			if configPath == "" {
				var err error
				if configPath, err = config.ConfigPath(); err != nil {
					return NewCommandError("init", "locate config", err)
				}
			}
			cfg := config.Default()
			if o.commandsPath != "" {
				cfg.Commands.File = o.commandsPath
			}
			commandsPath := cfg.CommandsPath()

			if !force {
				for _, p := range []string{configPath, commandsPath} {
					if util.FileExists(p) {
						return NewCommandError("init", "write "+p,
							fmt.Errorf("%w (use --force to overwrite)", os.ErrExist))
					}
				}
			}

			if err := config.SaveTo(cfg, configPath); err != nil {
				return NewCommandError("init", "write config", err)
			}
			if err := loader.WriteDefault(commandsPath, true); err != nil {
				return NewCommandError("init", "write commands", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, SuccessStyle.Render("created"), configPath)
			fmt.Fprintln(out, SuccessStyle.Render("created"), commandsPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func newListCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in and configured commands",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.newApp(io.Discard)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.LoadCommands(); err != nil {
				return err
			}
			return app.Shell.WithRegistry(func(reg *commands.Registry) error {
				return builtin.WriteCommandTable(cmd.OutOrStdout(), reg, GetTerminalWidth())
			})
		},
	}
}

func newConfigCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.String())
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  noArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "cmdbar %s\n", Version)
			fmt.Fprintf(out, "  commit: %s\n", GitCommit)
			fmt.Fprintf(out, "  built: %s\n", BuildDate)
		},
	}
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) > n {
			return NewUsageError("%s accepts at most %d argument(s), got %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

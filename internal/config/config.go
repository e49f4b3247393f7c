// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/miere43/cmdbar/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete cmdbar configuration.
type Config struct {
	// Shell behaviour
	Shell ShellConfig `toml:"shell"`

	// Commands file location and reloading
	Commands CommandsConfig `toml:"commands"`

	// Logging destination and level
	Logging LoggingConfig `toml:"logging"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// ShellConfig contains evaluation settings.
type ShellConfig struct {
	// Prompt is shown in line mode and in the command bar
	Prompt string `toml:"prompt"`
	// Mode is the interactive front end: "line" or "bar"
	Mode string `toml:"mode"`
	// HistorySize is the number of lines kept for recall
	HistorySize int `toml:"history_size"`
	// TransientArenaKB is the bump buffer of the per-round-trip arena
	TransientArenaKB int `toml:"transient_arena_kb"`
	// HeapLimitMB caps live heap allocations (0 = unlimited)
	HeapLimitMB int `toml:"heap_limit_mb"`
}

// CommandsConfig locates the commands file.
type CommandsConfig struct {
	// File is the commands file; "~" expands to the home directory
	File string `toml:"file"`
	// Watch reloads the commands file when it changes
	Watch bool `toml:"watch"`
	// DebounceMS coalesces bursts of file events
	DebounceMS int `toml:"debounce_ms"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level"`
	// File receives JSON log lines; empty disables logging
	File string `toml:"file"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// NoColor disables colored output
	NoColor bool `toml:"no_color"`
}

// Front end modes.
const (
	ModeLine = "line"
	ModeBar  = "bar"
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Shell: ShellConfig{
			Prompt:           "> ",
			Mode:             ModeLine,
			HistorySize:      16,
			TransientArenaKB: 64,
			HeapLimitMB:      0,
		},
		Commands: CommandsConfig{
			File:       filepath.Join("~", ".cmdbar", "commands.ini"),
			Watch:      true,
			DebounceMS: 250,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the cmdbar configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".cmdbar"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CommandsPath returns the commands file with "~" expanded.
func (c *Config) CommandsPath() string {
	return util.ExpandHome(c.Commands.File)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.cmdbar/config.toml, falling back to defaults when the file
// does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if err := decodeFile(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decodeFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	fillDefaults(cfg, md)
	return nil
}

// fillDefaults fills in values the file did not set.
func fillDefaults(cfg *Config, md toml.MetaData) {
	defaults := Default()

	// Shell
	if cfg.Shell.Prompt == "" {
		cfg.Shell.Prompt = defaults.Shell.Prompt
	}
	if cfg.Shell.Mode == "" {
		cfg.Shell.Mode = defaults.Shell.Mode
	}
	if cfg.Shell.HistorySize == 0 {
		cfg.Shell.HistorySize = defaults.Shell.HistorySize
	}
	if cfg.Shell.TransientArenaKB == 0 {
		cfg.Shell.TransientArenaKB = defaults.Shell.TransientArenaKB
	}

	// Commands
	if cfg.Commands.File == "" {
		cfg.Commands.File = defaults.Commands.File
	}
	if !md.IsDefined("commands", "watch") {
		cfg.Commands.Watch = defaults.Commands.Watch
	}
	if cfg.Commands.DebounceMS == 0 {
		cfg.Commands.DebounceMS = defaults.Commands.DebounceMS
	}

	// Logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration to path atomically.
func SaveTo(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# cmdbar configuration file\n")
	buf.WriteString("# Commands themselves live in the file named by [commands] file.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	mode := strings.ToLower(c.Shell.Mode)
	if mode != ModeLine && mode != ModeBar {
		errs = append(errs, ValidationError{
			Field:   "shell.mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: line, bar", c.Shell.Mode),
		})
	}
	if c.Shell.HistorySize < 1 || c.Shell.HistorySize > 1000 {
		errs = append(errs, ValidationError{
			Field:   "shell.history_size",
			Message: fmt.Sprintf("must be between 1 and 1000, got %d", c.Shell.HistorySize),
		})
	}
	if c.Shell.TransientArenaKB < 1 || c.Shell.TransientArenaKB > 64*1024 {
		errs = append(errs, ValidationError{
			Field:   "shell.transient_arena_kb",
			Message: fmt.Sprintf("must be between 1 and 65536, got %d", c.Shell.TransientArenaKB),
		})
	}
	if c.Shell.HeapLimitMB < 0 {
		errs = append(errs, ValidationError{
			Field:   "shell.heap_limit_mb",
			Message: "must not be negative",
		})
	}

	if strings.TrimSpace(c.Commands.File) == "" {
		errs = append(errs, ValidationError{
			Field:   "commands.file",
			Message: "must not be empty",
		})
	}
	if c.Commands.DebounceMS < 0 || c.Commands.DebounceMS > 60_000 {
		errs = append(errs, ValidationError{
			Field:   "commands.debounce_ms",
			Message: fmt.Sprintf("must be between 0 and 60000, got %d", c.Commands.DebounceMS),
		})
	}

	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - CMDBAR_COMMANDS: overrides commands.file
//   - CMDBAR_MODE: overrides shell.mode
//   - CMDBAR_PROMPT: overrides shell.prompt
//   - CMDBAR_LOG_LEVEL: overrides logging.level
//   - CMDBAR_LOG_FILE: overrides logging.file
//   - CMDBAR_HISTORY_SIZE: overrides shell.history_size
//   - NO_COLOR: any non-empty value sets ui.no_color
func (c *Config) ApplyEnvOverrides() {
	if file := os.Getenv("CMDBAR_COMMANDS"); file != "" {
		c.Commands.File = file
	}
	if mode := os.Getenv("CMDBAR_MODE"); mode != "" {
		c.Shell.Mode = strings.ToLower(mode)
	}
	if prompt := os.Getenv("CMDBAR_PROMPT"); prompt != "" {
		c.Shell.Prompt = prompt
	}
	if level := os.Getenv("CMDBAR_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
	if file := os.Getenv("CMDBAR_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	if size := os.Getenv("CMDBAR_HISTORY_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil {
			c.Shell.HistorySize = n
		}
	}
	if os.Getenv("NO_COLOR") != "" {
		c.UI.NoColor = true
	}
}

// String renders the configuration as TOML for display.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return buf.String()
}

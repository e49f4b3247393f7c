// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for cmdbar.
//
// Configuration lives in ~/.cmdbar/config.toml. Missing values fall back to
// Default(), environment variables override the file, and Validate reports
// every problem at once as ValidateErrors.
//
// The commands themselves are not part of this file; [commands] file points
// at the commands file read by the loader package.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	path := cfg.CommandsPath()
package config

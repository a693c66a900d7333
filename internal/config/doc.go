// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for aptui.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ServerConfig: Connection form defaults (address, slot, password)
//   - ClientConfig: Chat rate limiting and connect tags
//   - UIConfig: Terminal behavior (theme, timestamps, mouse)
//   - LoggingConfig: Diagnostic log file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (APTUI_*), including values from a .env file
//   - ~/.aptui/config.toml
//   - ~/.aptui/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	addr := cfg.Server.URL
//	rate := cfg.Client.SayRatePerSec
//
// Follow edits while running:
//
//	err := config.Watch(ctx, path, 0, func(cfg *config.Config, err error) { ... })
package config

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli defines the aptui command line and the commands that run
// without the terminal UI.
//
// # Commands
//
//	aptui [tui] [--server ADDR] [--slot NAME] [--connect]
//	aptui tail  [--timestamps] [--plain]
//	aptui say   TEXT...
//	aptui hints [--pending] [--wait 10s]
//	aptui config show|path|init|get KEY|set KEY VALUE
//	aptui version
//
// Connection flags fall back to the [server] section of the configuration
// file and its APTUI_* environment overrides. A password protected room
// prompts for the password when stdin is a terminal.
//
// Commands return errors; main maps them to exit codes with ExitCode.
package cli

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string and file helpers shared by aptui packages.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth, PadRight: column-aware truncation and padding for
//     table cells, using go-runewidth
//
// File Operations:
//   - AtomicWriteFileWithDir: temp file, fsync, rename
//
// # Usage
//
//	// Fit a location name into a table column
//	cell := util.PadRight(hint.LocationLabel(), 24)
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFileWithDir(path, data, 0600, 0700)
package util

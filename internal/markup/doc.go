// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup implements the inline color markup used for log lines.
//
// A log line is flat text in which a word may be prefixed with an inline
// tag of the form #RRGGBB. The tag colors the non-whitespace run that
// immediately follows it.
//
// # Key Types
//
//   - Tag: a 6 hex digit RGB color without the leading '#'
//   - Role: semantic classification mapped to a Tag by the palette
//   - Segment: structured text plus an optional Role, input to Encode
//   - DisplaySegment: plain or colored text run, output of Decode
//
// # Usage
//
// Encode structured message parts into a line:
//
//	line := markup.Encode([]markup.Segment{
//		markup.Plain("Found "),
//		markup.Colored("Hookshot", markup.RoleProgressionItem),
//	})
//
// Decode a stored line for display:
//
//	for _, seg := range markup.Decode(line) {
//		if seg.Kind == markup.KindColored {
//			// render seg.Text with seg.Color.Hex()
//		}
//	}
//
// Both functions are pure and safe to call from any goroutine.
package markup

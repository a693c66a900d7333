// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import "strings"

// Segment is one structured part of an incoming message.
type Segment struct {
	Text  string
	Role  Role
	Color Tag // only read for RoleExplicit
}

// Plain returns an uncolored segment.
func Plain(text string) Segment {
	return Segment{Text: text}
}

// Colored returns a segment colored through the role palette.
func Colored(text string, role Role) Segment {
	return Segment{Text: text, Role: role}
}

// Literal returns a segment carrying its own color.
func Literal(text string, color Tag) Segment {
	return Segment{Text: text, Role: RoleExplicit, Color: color}
}

// Tag resolves the segment's color. ok is false for uncolored segments,
// including explicit segments whose color is not a valid tag.
func (s Segment) Tag() (Tag, bool) {
	switch s.Role {
	case RoleNone:
		return "", false
	case RoleExplicit:
		if tag, ok := ParseTag(string(s.Color)); ok {
			return tag, true
		}
		return "", false
	default:
		return RoleTag(s.Role)
	}
}

// Encode flattens segments into a single marked-up line.
//
// Uncolored text is copied verbatim. Colored text is split on single
// spaces and every non-empty word gets its own tag; empty words keep
// their position so the rejoined spacing matches the input.
func Encode(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		tag, ok := seg.Tag()
		if !ok {
			b.WriteString(seg.Text)
			continue
		}
		for i, word := range strings.Split(seg.Text, " ") {
			if i > 0 {
				b.WriteByte(' ')
			}
			if word == "" {
				continue
			}
			b.WriteByte('#')
			b.WriteString(string(tag))
			b.WriteString(word)
		}
	}
	return b.String()
}

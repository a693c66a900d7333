// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/aptui/internal/markup"
)

// =============================================================================
// SEGMENT RENDERING
// =============================================================================

// RenderSegments renders decoded segments with lipgloss. Colored runs use
// the tag carried in the line as the foreground.
func RenderSegments(segs []markup.DisplaySegment) string {
	var b strings.Builder
	for _, seg := range segs {
		if seg.Kind == markup.KindColored && seg.Color.Valid() {
			b.WriteString(lipgloss.NewStyle().Foreground(TagColor(seg.Color)).Render(seg.Text))
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// RenderLine decodes a stored log line and renders it.
func RenderLine(line string) string {
	return RenderSegments(markup.Decode(line))
}

// TermenvLine decodes a log line and colors it for a termenv output.
// Outputs without color support get the visible text only.
func TermenvLine(out *termenv.Output, line string) string {
	segs := markup.Decode(line)
	if out == nil || out.Profile == termenv.Ascii {
		return markup.Visible(segs)
	}

	var b strings.Builder
	for _, seg := range segs {
		if seg.Kind == markup.KindColored && seg.Color.Valid() {
			b.WriteString(out.String(seg.Text).Foreground(out.Color(seg.Color.Hex())).String())
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

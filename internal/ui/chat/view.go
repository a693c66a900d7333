// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/jeranaias/aptui/internal/model"
	"github.com/jeranaias/aptui/internal/ui/styles"
)

// timestampLayout is the arrival time shown in front of log lines.
const timestampLayout = "15:04:05"

// View renders the log panel, the hints table and the input line.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	logPanel := m.theme.LogPanel.
		Width(max(m.width-2, 1)).
		Render(m.viewport.View())

	input := m.theme.InputContainer.
		Width(max(m.width-2, 1)).
		Render(m.input.View())

	if !m.showHints {
		return lipgloss.JoinVertical(lipgloss.Left, logPanel, input)
	}
	return lipgloss.JoinVertical(lipgloss.Left, logPanel, m.hints.View(), input)
}

// renderLine decodes one stored line and wraps it to width. Words longer
// than width are hard-wrapped.
func renderLine(theme *styles.Theme, line model.Line, width int, timestamps bool) string {
	s := styles.RenderLine(line.Text)
	if timestamps {
		s = theme.Timestamp.Render(line.At.Format(timestampLayout)) + " " + s
	}
	if width <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}

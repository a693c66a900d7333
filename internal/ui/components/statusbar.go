// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aptui/internal/ui/styles"
	"github.com/jeranaias/aptui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom line: key help on the left, info on the right.
type StatusBar struct {
	help  help.Model
	keys  help.KeyMap
	info  string
	width int
	theme *styles.Theme
}

// NewStatusBar creates a status bar showing bindings from keys.
func NewStatusBar(theme *styles.Theme, keys help.KeyMap) *StatusBar {
	h := help.New()
	h.Styles.ShortKey = theme.ShortcutKey
	h.Styles.ShortDesc = theme.ShortcutDesc
	h.Styles.ShortSeparator = theme.ShortcutDesc
	h.Styles.FullKey = theme.ShortcutKey
	h.Styles.FullDesc = theme.ShortcutDesc
	h.Styles.FullSeparator = theme.ShortcutDesc

	return &StatusBar{
		help:  h,
		keys:  keys,
		width: 80,
		theme: theme,
	}
}

// SetWidth updates the bar width
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// SetKeys switches the bindings shown, e.g. between form and session.
func (s *StatusBar) SetKeys(keys help.KeyMap) {
	s.keys = keys
}

// SetInfo sets the right-aligned text.
func (s *StatusBar) SetInfo(info string) {
	s.info = info
}

// ToggleHelp switches between short and full help.
func (s *StatusBar) ToggleHelp() {
	s.help.ShowAll = !s.help.ShowAll
}

// ShowingFullHelp reports whether full help is shown.
func (s *StatusBar) ShowingFullHelp() bool {
	return s.help.ShowAll
}

// View renders the status bar
func (s *StatusBar) View() string {
	// Horizontal padding of the bar
	inner := s.width - 2
	if inner < 10 {
		inner = 10
	}

	info := ""
	if s.info != "" {
		info = s.theme.ShortcutDesc.Render(util.TruncateWidth(s.info, inner/2))
	}

	s.help.Width = inner - lipgloss.Width(info) - 1
	left := ""
	if s.keys != nil {
		left = s.help.View(s.keys)
	}

	if s.help.ShowAll {
		return s.theme.StatusBar.Width(s.width).Render(lipgloss.JoinVertical(lipgloss.Left, left, info))
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(info)
	if gap < 1 {
		gap = 1
	}
	line := left + lipgloss.NewStyle().Width(gap).Render("") + info
	return s.theme.StatusBar.Width(s.width).Render(line)
}

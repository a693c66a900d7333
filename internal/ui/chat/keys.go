// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings of the session screen.
// The input line keeps printable keys, so bindings use control keys.
type KeyMap struct {
	Submit      key.Binding
	Disconnect  key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	HintsUp     key.Binding
	HintsDown   key.Binding
	ToggleHints key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default key bindings for the session screen.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "disconnect"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("ctrl+home"),
			key.WithHelp("C-Home", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("ctrl+end"),
			key.WithHelp("C-End", "go to bottom"),
		),
		HintsUp: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("M-up", "scroll hints up"),
		),
		HintsDown: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("M-down", "scroll hints down"),
		),
		ToggleHints: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "toggle hints"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Disconnect, k.ToggleHints, k.Help, k.Quit}
}

// FullHelp returns all bindings, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Log navigation
		{k.PageUp, k.PageDown, k.Home, k.End},
		// Hints
		{k.HintsUp, k.HintsDown, k.ToggleHints},
		// Actions
		{k.Submit, k.Disconnect, k.Help, k.Quit},
	}
}

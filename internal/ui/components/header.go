// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aptui/internal/ui/styles"
	"github.com/jeranaias/aptui/internal/util"
)

// =============================================================================
// CONNECTION STATE
// =============================================================================

// ConnState is the connection state shown in the header.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

// String returns the display string for the state
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the single-line title bar: brand, slot, server and state.
type Header struct {
	Title  string
	Slot   string
	Server string
	State  ConnState
	Width  int
	theme  *styles.Theme
}

// NewHeader creates a new Header component with default values
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "aptui",
		State: StateDisconnected,
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetSession records the slot and server of the current login.
func (h *Header) SetSession(slot, server string) {
	h.Slot = slot
	h.Server = server
}

// SetState updates the connection state
func (h *Header) SetState(state ConnState) {
	h.State = state
}

// View renders the header
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}

	brand := h.theme.HeaderBrand.Render(h.Title)
	state := h.stateStyle().Render("[" + h.State.String() + "]")

	var who string
	switch {
	case h.Slot != "" && h.Server != "":
		who = h.Slot + " @ " + h.Server
	case h.Server != "":
		who = h.Server
	}

	// Room left for the slot and server after brand, state and separators.
	room := width - lipgloss.Width(brand) - lipgloss.Width(state) - 6
	parts := []string{brand}
	if who != "" && room > 3 {
		parts = append(parts, h.theme.HeaderSubtitle.Render(util.TruncateWidth(who, room)))
	}
	parts = append(parts, state)

	return h.theme.Header.Width(width).Render(strings.Join(parts, "  "))
}

func (h *Header) stateStyle() lipgloss.Style {
	switch h.State {
	case StateConnected:
		return h.theme.StateConnected
	case StateConnecting:
		return h.theme.StateConnecting
	default:
		return h.theme.StateDisconnected
	}
}

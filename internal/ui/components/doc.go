// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the aptui TUI.
//
// Most components are pointer types with Set* methods for state and a View
// method that renders with the shared styles.Theme. Interactive ones also
// expose Update in the Bubble Tea manner.
//
// # Components
//
//   - Header: brand, slot and server, connection state
//   - ConnectForm: server URL, slot name and masked password inputs;
//     emits ConnectRequestMsg on submit
//   - HintsTable: lipgloss table of hints with item and status colors
//   - StatusBar: bubbles/help key hints and right-aligned info
//   - Spinner: progress indicator while logging in
//
// # Usage
//
//	theme := styles.NewTheme()
//	form := components.NewConnectForm(theme)
//	form.SetValues(cfg.Server.URL, cfg.Server.Slot, cfg.Server.Password)
//
//	form, cmd := form.Update(msg)
package components

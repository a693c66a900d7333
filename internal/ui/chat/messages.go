// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// SayResultMsg reports the outcome of sending a chat message.
type SayResultMsg struct {
	Text string
	Err  error
}

// DisconnectRequestMsg asks the application to end the session.
type DisconnectRequestMsg struct{}

// RefreshMsg asks the view to pick up new log lines and hints.
type RefreshMsg struct{}

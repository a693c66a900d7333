// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aptui/internal/archipelago"
)

// DefaultSayTimeout bounds one chat send, rate limiting included.
const DefaultSayTimeout = 10 * time.Second

// Sayer sends chat messages. *archipelago.Client implements it.
type Sayer interface {
	Say(ctx context.Context, text string) error
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// SayCmd sends text and reports the result as a SayResultMsg.
func SayCmd(client Sayer, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return SayResultMsg{Text: text, Err: archipelago.ErrNotConnected}
		}
		if timeout <= 0 {
			timeout = DefaultSayTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		return SayResultMsg{Text: text, Err: client.Say(ctx, text)}
	}
}

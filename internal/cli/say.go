// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/aptui/internal/ui/chat"
)

// ErrEmptyMessage is returned by say when no text is given.
var ErrEmptyMessage = errors.New("message text is empty")

// SayCmd sends one chat message.
type SayCmd struct {
	Conn ConnectFlags `embed:""`
	Text []string     `arg:"" help:"Message text. Words are joined with spaces."`
}

// Message returns the text to send.
func (c *SayCmd) Message() string {
	return strings.TrimSpace(strings.Join(c.Text, " "))
}

// Run implements the say command.
func (c *SayCmd) Run(g *Globals) error {
	text := c.Message()
	if text == "" {
		return &CommandError{Code: ExitUsageError, Err: ErrEmptyMessage}
	}

	ctx := context.Background()
	client := NewClient(g.Config)
	t, err := Connect(ctx, g, client, c.Conn)
	if err != nil {
		return err
	}
	defer client.Disconnect()

	if err := Send(ctx, client, text); err != nil {
		return err
	}
	fmt.Fprintln(g.Stderr, SuccessStyle.Render("Sent")+" "+ValueStyle.Render("as "+t.Slot))
	return nil
}

// Send sends text with the chat send timeout.
func Send(ctx context.Context, client chat.Sayer, text string) error {
	ctx, cancel := context.WithTimeout(ctx, chat.DefaultSayTimeout)
	defer cancel()
	if err := client.Say(ctx, text); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

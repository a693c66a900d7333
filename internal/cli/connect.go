// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jeranaias/aptui/internal/archipelago"
	"github.com/jeranaias/aptui/internal/config"
)

// NewClient builds an Archipelago client from the [client] and [server]
// sections of cfg.
func NewClient(cfg *config.Config) *archipelago.Client {
	cc := archipelago.DefaultConfig()
	if cfg.Server.ConnectTimeoutSecs > 0 {
		cc.ConnectTimeout = time.Duration(cfg.Server.ConnectTimeoutSecs) * time.Second
	}
	if cfg.Client.SayRatePerSec > 0 {
		cc.SayRate = cfg.Client.SayRatePerSec
	}
	if cfg.Client.SayBurst > 0 {
		cc.SayBurst = cfg.Client.SayBurst
	}
	if len(cfg.Client.Tags) > 0 {
		cc.Tags = append([]string(nil), cfg.Client.Tags...)
	}
	return archipelago.NewClientWithConfig(cc)
}

// Login logs client in to t.
func Login(ctx context.Context, client *archipelago.Client, t Target) error {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}
	return client.Login(ctx, t.Server, t.Slot, archipelago.LoginOptions{Password: t.Password})
}

// NeedsPassword reports whether err is a refusal from a password
// protected room.
func NeedsPassword(client *archipelago.Client, err error) bool {
	return errors.Is(err, archipelago.ErrRefused) && client.Room().Password
}

// Connect resolves flags against the configuration and logs client in.
// Subscribe to client before calling so no early event is missed. When the
// room is password protected and no password was given, the password is
// read with g.Prompt and the login retried once.
func Connect(ctx context.Context, g *Globals, client *archipelago.Client, flags ConnectFlags) (Target, error) {
	t, err := flags.Resolve(g.Config)
	if err != nil {
		return t, err
	}

	err = Login(ctx, client, t)
	if err != nil && t.Password == "" && g.Prompt != nil && NeedsPassword(client, err) {
		pw, perr := g.Prompt("Password for " + t.Slot + ": ")
		if perr != nil {
			return t, perr
		}
		t.Password = pw
		err = Login(ctx, client, t)
	}
	if err != nil {
		return t, fmt.Errorf("failed to connect to %s: %w", t.Server, err)
	}
	return t, nil
}

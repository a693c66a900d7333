// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archipelago provides a text-only websocket client for
// Archipelago multiworld servers.
//
// The client performs the RoomInfo, DataPackage and Connect handshake,
// resolves item, location and player IDs in server messages to names, and
// watches the slot's hint list in data storage.
//
// # Key Types
//
//   - Client: websocket session with event subscriptions
//   - MessageEvent: a server message as an ordered list of MessageNode
//   - Subscription: handle returned by the On* methods
//   - ClientError: typed error with sentinels for errors.Is
//
// # Usage
//
//	client := archipelago.NewClient()
//	sub := client.OnMessage(func(ev archipelago.MessageEvent) {
//	    fmt.Println(ev.Text())
//	})
//	defer sub.Unsubscribe()
//
//	err := client.Login(ctx, "archipelago.gg:38281", "Player1", archipelago.LoginOptions{})
//	if err != nil {
//	    return err
//	}
//	defer client.Disconnect()
//	client.Say(ctx, "!hint Hookshot")
//
// Handlers run on the client's read goroutine. Callers that own state on
// another goroutine should hand events over rather than mutate directly.
package archipelago

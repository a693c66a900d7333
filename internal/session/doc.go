// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the state of one connection as seen by the user:
// the message log and the hints table.
//
// Incoming message nodes are classified into markup segments and encoded
// into log lines. Hint events are merged into the hints table by item
// identity.
//
// # Key Types
//
//   - Session: owns the Log and HintTable and their event subscriptions
//   - EventSource: the subscription surface of archipelago.Client
//   - Dispatcher: moves event handling onto the goroutine owning the state
//
// # Usage
//
//	s := session.New()
//	events := make(chan func(), 64)
//	s.Attach(client, func(fn func()) { events <- fn })
//	defer s.Detach()
//
// All Session methods must be called from the goroutine that the
// Dispatcher delivers to.
package session

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the session screen: the scrolling message log,
// the hints table and the chat input.
//
// The model reads from a session.Session and never mutates it except to
// record send failures. Log lines are decoded and wrapped once and cached;
// Refresh renders only lines appended since the previous call.
//
// Sending goes through SayCmd so the websocket write never blocks the
// Bubble Tea event loop.
package chat

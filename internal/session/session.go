// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"log/slog"

	"github.com/jeranaias/aptui/internal/archipelago"
	"github.com/jeranaias/aptui/internal/logging"
	"github.com/jeranaias/aptui/internal/model"
)

// Notice prefixes for shell failures shown in the log.
const (
	ConnectFailedPrefix = "Failed to connect to Archipelago server: "
	SendFailedPrefix    = "Failed to send message: "
)

// =============================================================================
// EVENT SOURCE
// =============================================================================

// EventSource is the subscription surface a Session attaches to.
// *archipelago.Client implements it.
type EventSource interface {
	OnMessage(fn func(archipelago.MessageEvent)) *archipelago.Subscription
	OnHintsInitialized(fn func([]model.Hint)) *archipelago.Subscription
	OnHintUpdated(fn func(model.Hint)) *archipelago.Subscription
	Self() archipelago.Player
}

// Dispatcher runs fn on the goroutine that owns the Session.
type Dispatcher func(fn func())

// Inline is a Dispatcher that runs fn immediately.
func Inline(fn func()) { fn() }

// =============================================================================
// SESSION
// =============================================================================

// Session is the log and hints table of one connection.
type Session struct {
	log    *model.Log
	hints  *model.HintTable
	subs   []*archipelago.Subscription
	logger *slog.Logger
}

// New creates an empty, detached session.
func New() *Session {
	return &Session{
		log:    model.NewLog(),
		hints:  model.NewHintTable(),
		logger: logging.For("session"),
	}
}

// Log returns the message log.
func (s *Session) Log() *model.Log {
	return s.log
}

// Hints returns the hints table.
func (s *Session) Hints() *model.HintTable {
	return s.hints
}

// Attach subscribes to messages, hint initialization and hint updates on
// src. Handlers encode on the emitting goroutine and apply the result
// through dispatch. A previous attachment is released first.
func (s *Session) Attach(src EventSource, dispatch Dispatcher) {
	s.Detach()
	if dispatch == nil {
		dispatch = Inline
	}

	s.subs = []*archipelago.Subscription{
		src.OnMessage(func(ev archipelago.MessageEvent) {
			line := EncodeMessage(ev.Nodes, src.Self())
			dispatch(func() { s.log.Append(line) })
		}),
		src.OnHintsInitialized(func(all []model.Hint) {
			rows := append([]model.Hint(nil), all...)
			dispatch(func() { s.hints.Replace(rows) })
		}),
		src.OnHintUpdated(func(h model.Hint) {
			dispatch(func() {
				if _, added := s.hints.Upsert(h); added {
					s.logger.Debug("hint added", "key", h.Key.String())
				}
			})
		}),
	}
	s.logger.Debug("attached", "subscriptions", len(s.subs))
}

// Detach releases every subscription made by Attach. It is safe to call
// when not attached.
func (s *Session) Detach() {
	if len(s.subs) == 0 {
		return
	}
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
	s.logger.Debug("detached")
}

// Attached reports whether the session holds subscriptions.
func (s *Session) Attached() bool {
	return len(s.subs) > 0
}

// Notice appends informational text to the log.
func (s *Session) Notice(text string) {
	s.log.Append(text)
}

// ConnectFailed records a failed login.
func (s *Session) ConnectFailed(err error) {
	s.logger.Warn("login failed", "error", err)
	s.Notice(ConnectFailedPrefix + err.Error())
}

// SendFailed records a failed chat message.
func (s *Session) SendFailed(err error) {
	s.logger.Warn("say failed", "error", err)
	s.Notice(SendFailedPrefix + err.Error())
}

// Reset clears the log and the hints table.
func (s *Session) Reset() {
	s.log.Clear()
	s.hints.Clear()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archipelago

import (
	"slices"
	"sync"
)

// Subscription is a registered event handler.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe removes the handler. Calling it more than once, or on a nil
// subscription, does nothing.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

// NewSubscription returns a subscription that runs cancel once on
// Unsubscribe. It lets other event sources hand out the same handle type.
func NewSubscription(cancel func()) *Subscription {
	if cancel == nil {
		cancel = func() {}
	}
	return &Subscription{cancel: cancel}
}

// hub fans one event type out to its handlers. Handlers are called on the
// emitting goroutine, outside the hub lock.
type hub[T any] struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func(T)
}

func (h *hub[T]) subscribe(fn func(T)) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handlers == nil {
		h.handlers = make(map[int]func(T))
	}
	id := h.next
	h.next++
	h.handlers[id] = fn
	return NewSubscription(func() {
		h.mu.Lock()
		delete(h.handlers, id)
		h.mu.Unlock()
	})
}

func (h *hub[T]) emit(v T) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.handlers))
	for id := range h.handlers {
		ids = append(ids, id)
	}
	fns := make([]func(T), 0, len(ids))
	// Call in registration order.
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, h.handlers[id])
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (h *hub[T]) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handlers)
}

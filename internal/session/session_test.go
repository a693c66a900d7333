// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aptui/internal/archipelago"
	"github.com/jeranaias/aptui/internal/markup"
	"github.com/jeranaias/aptui/internal/model"
)

// =============================================================================
// FAKE EVENT SOURCE
// =============================================================================

type fakeSource struct {
	self        archipelago.Player
	messages    []func(archipelago.MessageEvent)
	initialized []func([]model.Hint)
	updated     []func(model.Hint)
}

func (f *fakeSource) OnMessage(fn func(archipelago.MessageEvent)) *archipelago.Subscription {
	f.messages = append(f.messages, fn)
	i := len(f.messages) - 1
	return archipelago.NewSubscription(func() { f.messages[i] = nil })
}

func (f *fakeSource) OnHintsInitialized(fn func([]model.Hint)) *archipelago.Subscription {
	f.initialized = append(f.initialized, fn)
	i := len(f.initialized) - 1
	return archipelago.NewSubscription(func() { f.initialized[i] = nil })
}

func (f *fakeSource) OnHintUpdated(fn func(model.Hint)) *archipelago.Subscription {
	f.updated = append(f.updated, fn)
	i := len(f.updated) - 1
	return archipelago.NewSubscription(func() { f.updated[i] = nil })
}

func (f *fakeSource) Self() archipelago.Player { return f.self }

func (f *fakeSource) active() int {
	n := 0
	for _, fn := range f.messages {
		if fn != nil {
			n++
		}
	}
	for _, fn := range f.initialized {
		if fn != nil {
			n++
		}
	}
	for _, fn := range f.updated {
		if fn != nil {
			n++
		}
	}
	return n
}

func (f *fakeSource) message(nodes ...archipelago.MessageNode) {
	for _, fn := range f.messages {
		if fn != nil {
			fn(archipelago.MessageEvent{Nodes: nodes})
		}
	}
}

func (f *fakeSource) initialize(hints []model.Hint) {
	for _, fn := range f.initialized {
		if fn != nil {
			fn(hints)
		}
	}
}

func (f *fakeSource) update(h model.Hint) {
	for _, fn := range f.updated {
		if fn != nil {
			fn(h)
		}
	}
}

func text(s string) archipelago.MessageNode {
	return archipelago.MessageNode{Type: archipelago.NodeText, Text: s}
}

func player(name string, slot int) archipelago.MessageNode {
	p := archipelago.Player{Slot: slot, Alias: name}
	return archipelago.MessageNode{Type: archipelago.NodePlayer, Text: name, Player: &p}
}

func item(name string, flags model.ItemFlags) archipelago.MessageNode {
	return archipelago.MessageNode{Type: archipelago.NodeItem, Text: name, Item: &archipelago.Item{Name: name, Flags: flags}}
}

func location(name string) archipelago.MessageNode {
	return archipelago.MessageNode{Type: archipelago.NodeLocation, Text: name, Location: &archipelago.Location{Name: name}}
}

func color(s, c string) archipelago.MessageNode {
	return archipelago.MessageNode{Type: archipelago.NodeColor, Text: s, Color: c}
}

var alice = archipelago.Player{Slot: 1, Alias: "Alice"}

// =============================================================================
// CLASSIFY TESTS
// =============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		node archipelago.MessageNode
		want markup.Segment
	}{
		{"plain text", text("hello"), markup.Plain("hello")},
		{"self player", player("Alice", 1), markup.Colored("Alice", markup.RoleSelfPlayer)},
		{"other player", player("Bob", 2), markup.Plain("Bob")},
		{"useful item", item("Bow", model.FlagUseful), markup.Colored("Bow", markup.RoleUsefulItem)},
		{"progression item", item("Hookshot", model.FlagProgression), markup.Colored("Hookshot", markup.RoleProgressionItem)},
		{"trap item", item("Ice Trap", model.FlagTrap), markup.Colored("Ice Trap", markup.RoleTrapItem)},
		{"filler item", item("Rupee", 0), markup.Plain("Rupee")},
		{"useful wins over progression", item("Sword", model.FlagUseful|model.FlagProgression), markup.Colored("Sword", markup.RoleUsefulItem)},
		{"progression wins over trap", item("Odd", model.FlagProgression|model.FlagTrap), markup.Colored("Odd", markup.RoleProgressionItem)},
		{"location", location("Kakariko Well"), markup.Colored("Kakariko Well", markup.RoleLocation)},
		{"named color", color("warning", "salmon"), markup.Literal("warning", markup.Salmon)},
		{"literal color", color("x", "#12ab34"), markup.Literal("x", "12AB34")},
		{"formatting name", color("bold", "bold"), markup.Plain("bold")},
		{"color without text", color("", "red"), markup.Plain("")},
		{"entrance", archipelago.MessageNode{Type: archipelago.NodeEntrance, Text: "Gate"}, markup.Plain("Gate")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.node, alice))
		})
	}
}

func TestClassify_NoSelfBeforeLogin(t *testing.T) {
	server := player("Archipelago", 0)
	assert.Equal(t, markup.Plain("Archipelago"), Classify(server, archipelago.Player{}))
}

func TestEncodeMessage(t *testing.T) {
	line := EncodeMessage([]archipelago.MessageNode{
		player("Alice", 1),
		text(" found their "),
		item("Progressive Sword", model.FlagProgression),
		text(" ("),
		location("Link's House"),
		text(")"),
	}, alice)

	assert.Equal(t, "#EE00EEAlice found their #AF99EFProgressive #AF99EFSword (#00FF7FLink's #00FF7FHouse)", line)
	// The decoder consumes one separator after each tagged word.
	assert.Equal(t, "Alicefound their ProgressiveSword(Link'sHouse)", markup.Strip(line))
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSession_AttachDetach(t *testing.T) {
	src := &fakeSource{self: alice}
	s := New()

	s.Attach(src, Inline)
	assert.True(t, s.Attached())
	assert.Equal(t, 3, src.active())

	// Reattaching releases the previous subscriptions.
	s.Attach(src, Inline)
	assert.Equal(t, 3, src.active())

	s.Detach()
	assert.False(t, s.Attached())
	assert.Equal(t, 0, src.active())
	s.Detach()

	src.message(text("ignored"))
	assert.True(t, s.Log().IsEmpty())
}

func TestSession_MessagesAppendInOrder(t *testing.T) {
	src := &fakeSource{self: alice}
	s := New()
	s.Attach(src, Inline)

	src.message(player("Alice", 1), text(" has joined."))
	src.message(text("Bob: hi"))

	lines := s.Log().Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "#EE00EEAlice has joined.", lines[0].Text)
	assert.Equal(t, "Bob: hi", lines[1].Text)
}

func TestSession_DispatchDefersMutation(t *testing.T) {
	src := &fakeSource{self: alice}
	s := New()

	var queue []func()
	s.Attach(src, func(fn func()) { queue = append(queue, fn) })

	src.message(text("later"))
	src.update(model.Hint{Key: model.HintKey{Item: 1}})
	assert.True(t, s.Log().IsEmpty())
	assert.Equal(t, 0, s.Hints().Len())

	for _, fn := range queue {
		fn()
	}
	assert.Equal(t, 1, s.Log().Len())
	assert.Equal(t, 1, s.Hints().Len())
}

func TestSession_HintMergeByIdentity(t *testing.T) {
	src := &fakeSource{self: alice}
	s := New()
	s.Attach(src, Inline)

	key := model.HintKey{FindingPlayer: 2, ReceivingPlayer: 1, Location: 10, Item: 66001}
	src.update(model.Hint{Key: key, Item: "Hookshot", Found: false})
	src.update(model.Hint{Key: key, Item: "Hookshot", Found: true})

	rows := s.Hints().Rows()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Found)

	other := model.HintKey{FindingPlayer: 1, ReceivingPlayer: 2, Location: 11, Item: 1}
	src.update(model.Hint{Key: other, Item: "Master Sword"})

	rows = s.Hints().Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, key, rows[0].Key)
	assert.Equal(t, other, rows[1].Key)
}

func TestSession_HintsInitializedReplaces(t *testing.T) {
	src := &fakeSource{self: alice}
	s := New()
	s.Attach(src, Inline)

	src.update(model.Hint{Key: model.HintKey{Item: 99}})
	initial := []model.Hint{{Key: model.HintKey{Item: 1}}, {Key: model.HintKey{Item: 2}}}
	src.initialize(initial)

	rows := s.Hints().Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].Key.Item)

	// The table does not alias the event slice.
	initial[0].Found = true
	assert.False(t, s.Hints().Rows()[0].Found)
}

func TestSession_Notices(t *testing.T) {
	s := New()
	s.ConnectFailed(errors.New("dial tcp: connection refused"))
	s.SendFailed(errors.New("not connected"))
	s.Notice("Disconnected from Archipelago")

	lines := s.Log().Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "Failed to connect to Archipelago server: dial tcp: connection refused", lines[0].Text)
	assert.Equal(t, "Failed to send message: not connected", lines[1].Text)
	assert.Equal(t, "Disconnected from Archipelago", lines[2].Text)
}

func TestSession_Reset(t *testing.T) {
	src := &fakeSource{self: alice}
	s := New()
	s.Attach(src, Inline)
	src.message(text("a"))
	src.update(model.Hint{Key: model.HintKey{Item: 1}})

	s.Reset()
	assert.True(t, s.Log().IsEmpty())
	assert.Equal(t, 0, s.Hints().Len())
}

func TestSession_NilDispatcherRunsInline(t *testing.T) {
	src := &fakeSource{self: alice}
	s := New()
	s.Attach(src, nil)
	src.message(text("x"))
	assert.Equal(t, 1, s.Log().Len())
}

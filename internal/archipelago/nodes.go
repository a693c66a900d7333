// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archipelago

import (
	"strconv"
	"strings"

	"github.com/jeranaias/aptui/internal/model"
)

// =============================================================================
// MESSAGE NODES
// =============================================================================

// NodeType is the kind of a message node.
type NodeType int

const (
	NodeText NodeType = iota
	NodeColor
	NodePlayer
	NodeItem
	NodeLocation
	NodeEntrance
)

var nodeTypeNames = [...]string{"text", "color", "player", "item", "location", "entrance"}

func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return "unknown"
}

// Item is an item reference inside a message.
type Item struct {
	ID       int64
	Name     string
	Flags    model.ItemFlags
	Receiver Player
}

// Useful reports whether the item is flagged useful.
func (i Item) Useful() bool { return i.Flags.Useful() }

// Progression reports whether the item is flagged progression.
func (i Item) Progression() bool { return i.Flags.Progression() }

// Trap reports whether the item is flagged as a trap.
func (i Item) Trap() bool { return i.Flags.Trap() }

// Location is a location reference inside a message.
type Location struct {
	ID     int64
	Name   string
	Player Player
}

// MessageNode is one resolved part of a server message. Text is always the
// display text; the typed fields are set according to Type.
type MessageNode struct {
	Type     NodeType
	Text     string
	Color    string    // NodeColor
	Player   *Player   // NodePlayer
	Item     *Item     // NodeItem
	Location *Location // NodeLocation
}

// MessageEvent is a server message ready for display.
type MessageEvent struct {
	Type  string
	Nodes []MessageNode
}

// Text returns the plain concatenated text of the message.
func (m MessageEvent) Text() string {
	var b strings.Builder
	for _, n := range m.Nodes {
		b.WriteString(n.Text)
	}
	return b.String()
}

// resolver turns protocol parts into nodes using the room's name tables.
type resolver struct {
	roster *Roster
	names  *DataPackage
}

// nodes resolves every part of a PrintJSON packet.
func (r resolver) nodes(parts []JSONMessagePart) []MessageNode {
	out := make([]MessageNode, 0, len(parts))
	for _, part := range parts {
		out = append(out, r.node(part))
	}
	return out
}

func (r resolver) node(part JSONMessagePart) MessageNode {
	switch part.Type {
	case "player_id":
		slot, err := strconv.Atoi(part.Text)
		if err != nil {
			return MessageNode{Type: NodeText, Text: part.Text}
		}
		p := r.roster.Player(slot)
		return MessageNode{Type: NodePlayer, Text: p.Alias, Player: &p}

	case "player_name":
		p := Player{Alias: part.Text, Name: part.Text}
		return MessageNode{Type: NodePlayer, Text: part.Text, Player: &p}

	case "item_id", "item_name":
		receiver := r.roster.Player(part.Player)
		item := Item{Flags: model.ItemFlags(part.Flags), Receiver: receiver, Name: part.Text}
		if part.Type == "item_id" {
			if id, err := strconv.ParseInt(part.Text, 10, 64); err == nil {
				item.ID = id
				item.Name = r.names.ItemName(receiver.Game, id)
			}
		}
		return MessageNode{Type: NodeItem, Text: item.Name, Item: &item}

	case "location_id", "location_name":
		owner := r.roster.Player(part.Player)
		loc := Location{Player: owner, Name: part.Text}
		if part.Type == "location_id" {
			if id, err := strconv.ParseInt(part.Text, 10, 64); err == nil {
				loc.ID = id
				loc.Name = r.names.LocationName(owner.Game, id)
			}
		}
		return MessageNode{Type: NodeLocation, Text: loc.Name, Location: &loc}

	case "entrance_name":
		return MessageNode{Type: NodeEntrance, Text: part.Text}

	case "color":
		return MessageNode{Type: NodeColor, Text: part.Text, Color: part.Color}

	default:
		// "text", "hint_status" and anything newer render as plain text.
		return MessageNode{Type: NodeText, Text: part.Text}
	}
}

// hint converts a stored hint into a table row.
func (r resolver) hint(h NetworkHint) model.Hint {
	finder := r.roster.Player(h.FindingPlayer)
	receiver := r.roster.Player(h.ReceivingPlayer)
	return model.Hint{
		Key: model.HintKey{
			FindingPlayer:   h.FindingPlayer,
			ReceivingPlayer: h.ReceivingPlayer,
			Location:        h.Location,
			Item:            h.Item,
		},
		Sender:       finder.Alias,
		Receiver:     receiver.Alias,
		SenderSlot:   h.FindingPlayer,
		ReceiverSlot: h.ReceivingPlayer,
		Item:         r.names.ItemName(receiver.Game, h.Item),
		ItemFlags:    model.ItemFlags(h.ItemFlags),
		Location:     r.names.LocationName(finder.Game, h.Location),
		LocationGame: finder.Game,
		Entrance:     h.Entrance,
		Found:        h.Found,
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"github.com/jeranaias/aptui/internal/archipelago"
	"github.com/jeranaias/aptui/internal/markup"
)

// =============================================================================
// NODE CLASSIFICATION
// =============================================================================

// Classify maps a message node to a markup segment. Rules are checked in
// order and the first match wins:
//
//  1. color node with a color and text: that color, if it names a palette
//     color or is a literal #RRGGBB; otherwise uncolored
//  2. player node for the local slot: self-player
//  3. useful item: useful-item
//  4. progression item: progression-item
//  5. trap item: trap-item
//  6. location node: location
//
// Everything else is uncolored.
func Classify(node archipelago.MessageNode, self archipelago.Player) markup.Segment {
	switch {
	case node.Type == archipelago.NodeColor && node.Color != "" && node.Text != "":
		if tag, ok := markup.ResolveColor(node.Color); ok {
			return markup.Literal(node.Text, tag)
		}
		return markup.Plain(node.Text)

	case node.Type == archipelago.NodePlayer && node.Player != nil && isSelf(*node.Player, self):
		return markup.Colored(node.Text, markup.RoleSelfPlayer)

	case node.Type == archipelago.NodeItem && node.Item != nil && node.Item.Useful():
		return markup.Colored(node.Text, markup.RoleUsefulItem)

	case node.Type == archipelago.NodeItem && node.Item != nil && node.Item.Progression():
		return markup.Colored(node.Text, markup.RoleProgressionItem)

	case node.Type == archipelago.NodeItem && node.Item != nil && node.Item.Trap():
		return markup.Colored(node.Text, markup.RoleTrapItem)

	case node.Type == archipelago.NodeLocation:
		return markup.Colored(node.Text, markup.RoleLocation)
	}
	return markup.Plain(node.Text)
}

// isSelf reports whether p is the local player. Slot 0 is the server and
// never the local player.
func isSelf(p, self archipelago.Player) bool {
	return self.Slot != 0 && p.Slot == self.Slot
}

// EncodeMessage classifies nodes and encodes them into one log line.
func EncodeMessage(nodes []archipelago.MessageNode, self archipelago.Player) string {
	segs := make([]markup.Segment, len(nodes))
	for i, n := range nodes {
		segs[i] = Classify(n, self)
	}
	return markup.Encode(segs)
}

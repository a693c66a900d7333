// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "fmt"

// =============================================================================
// ITEM FLAGS
// =============================================================================

// ItemFlags classifies an item as sent by the server.
type ItemFlags int

const (
	FlagProgression ItemFlags = 1 << iota // logically required
	FlagUseful                            // helpful but not required
	FlagTrap                              // harmful to the receiver
)

// Progression reports whether the progression bit is set.
func (f ItemFlags) Progression() bool { return f&FlagProgression != 0 }

// Useful reports whether the useful bit is set.
func (f ItemFlags) Useful() bool { return f&FlagUseful != 0 }

// Trap reports whether the trap bit is set.
func (f ItemFlags) Trap() bool { return f&FlagTrap != 0 }

// Filler reports whether no classification bit is set.
func (f ItemFlags) Filler() bool { return f&(FlagProgression|FlagUseful|FlagTrap) == 0 }

// String returns a short label for the highest-priority classification.
func (f ItemFlags) String() string {
	switch {
	case f.Progression():
		return "progression"
	case f.Useful():
		return "useful"
	case f.Trap():
		return "trap"
	default:
		return "filler"
	}
}

// =============================================================================
// HINT TYPE
// =============================================================================

// HintKey identifies a placed item: which item, from whose world and
// location, for whom. An update with the same key describes the same item.
type HintKey struct {
	FindingPlayer   int
	ReceivingPlayer int
	Location        int64
	Item            int64
}

func (k HintKey) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", k.FindingPlayer, k.Location, k.ReceivingPlayer, k.Item)
}

// Hint is one row of the hints table.
type Hint struct {
	Key HintKey

	// Player aliases as shown in the table
	Sender       string
	Receiver     string
	SenderSlot   int
	ReceiverSlot int

	Item      string
	ItemFlags ItemFlags

	Location     string
	LocationGame string
	Entrance     string

	Found bool
}

// LocationLabel returns "<game> - <location>".
func (h Hint) LocationLabel() string {
	return h.LocationGame + " - " + h.Location
}

// StatusLabel returns "Found" or "Not Found".
func (h Hint) StatusLabel() string {
	if h.Found {
		return "Found"
	}
	return "Not Found"
}

// =============================================================================
// HINT TABLE
// =============================================================================

// HintTable keeps hints in arrival order. Updates for a known identity
// replace the existing row in place; new identities append.
type HintTable struct {
	rows  []Hint
	index map[HintKey]int
}

// NewHintTable creates an empty table.
func NewHintTable() *HintTable {
	return &HintTable{index: make(map[HintKey]int)}
}

// Replace discards the current rows and loads all, merging duplicates
// within all by the same rule as Upsert.
func (t *HintTable) Replace(all []Hint) {
	t.Clear()
	for _, h := range all {
		t.Upsert(h)
	}
}

// Upsert stores h. It returns the row index and whether a row was added.
func (t *HintTable) Upsert(h Hint) (int, bool) {
	if t.index == nil {
		t.index = make(map[HintKey]int)
	}
	if i, ok := t.index[h.Key]; ok {
		t.rows[i] = h
		return i, false
	}
	t.rows = append(t.rows, h)
	t.index[h.Key] = len(t.rows) - 1
	return len(t.rows) - 1, true
}

// Get returns the hint stored for key.
func (t *HintTable) Get(key HintKey) (Hint, bool) {
	i, ok := t.index[key]
	if !ok {
		return Hint{}, false
	}
	return t.rows[i], true
}

// Rows returns a copy of all rows in table order.
func (t *HintTable) Rows() []Hint {
	out := make([]Hint, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of rows.
func (t *HintTable) Len() int {
	return len(t.rows)
}

// FoundCount returns how many hinted items have been found.
func (t *HintTable) FoundCount() int {
	n := 0
	for _, h := range t.rows {
		if h.Found {
			n++
		}
	}
	return n
}

// Clear removes every row.
func (t *HintTable) Clear() {
	t.rows = nil
	t.index = make(map[HintKey]int)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ITEM FLAGS TESTS
// =============================================================================

func TestItemFlags(t *testing.T) {
	tests := []struct {
		flags ItemFlags
		want  string
	}{
		{0, "filler"},
		{FlagProgression, "progression"},
		{FlagUseful, "useful"},
		{FlagTrap, "trap"},
		{FlagProgression | FlagUseful, "progression"},
		{FlagUseful | FlagTrap, "useful"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.flags.String(), "flags %d", tt.flags)
	}

	assert.True(t, ItemFlags(0).Filler())
	assert.False(t, FlagTrap.Filler())
	assert.Equal(t, ItemFlags(1), FlagProgression)
	assert.Equal(t, ItemFlags(2), FlagUseful)
	assert.Equal(t, ItemFlags(4), FlagTrap)
}

// =============================================================================
// HINT TESTS
// =============================================================================

func TestHint_Labels(t *testing.T) {
	h := Hint{Location: "Kakariko Well", LocationGame: "Ocarina of Time"}
	assert.Equal(t, "Ocarina of Time - Kakariko Well", h.LocationLabel())
	assert.Equal(t, "Not Found", h.StatusLabel())

	h.Found = true
	assert.Equal(t, "Found", h.StatusLabel())
}

// =============================================================================
// HINT TABLE TESTS
// =============================================================================

func hintFor(item int64, found bool) Hint {
	return Hint{
		Key:      HintKey{FindingPlayer: 1, ReceivingPlayer: 2, Location: 1000 + item, Item: item},
		Sender:   "Alice",
		Receiver: "Bob",
		Item:     "Item",
		Found:    found,
	}
}

func TestHintTable_UpdateReplacesInPlace(t *testing.T) {
	table := NewHintTable()

	idx, added := table.Upsert(hintFor(7, false))
	assert.Equal(t, 0, idx)
	assert.True(t, added)

	idx, added = table.Upsert(hintFor(7, true))
	assert.Equal(t, 0, idx)
	assert.False(t, added)

	rows := table.Rows()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Found)

	idx, added = table.Upsert(hintFor(8, false))
	assert.Equal(t, 1, idx)
	assert.True(t, added)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 1, table.FoundCount())
}

func TestHintTable_KeepsArrivalOrder(t *testing.T) {
	table := NewHintTable()
	for _, item := range []int64{3, 1, 2} {
		table.Upsert(hintFor(item, false))
	}
	table.Upsert(hintFor(1, true))

	rows := table.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, int64(3), rows[0].Key.Item)
	assert.Equal(t, int64(1), rows[1].Key.Item)
	assert.True(t, rows[1].Found)
	assert.Equal(t, int64(2), rows[2].Key.Item)
}

func TestHintTable_Replace(t *testing.T) {
	table := NewHintTable()
	table.Upsert(hintFor(9, false))

	table.Replace([]Hint{hintFor(1, false), hintFor(2, true), hintFor(1, true)})

	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].Key.Item)
	assert.True(t, rows[0].Found)

	_, ok := table.Get(hintFor(9, false).Key)
	assert.False(t, ok)
}

func TestHintTable_Clear(t *testing.T) {
	table := NewHintTable()
	table.Upsert(hintFor(1, false))
	table.Clear()

	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.Rows())

	_, added := table.Upsert(hintFor(1, false))
	assert.True(t, added)
}

func TestHintTable_ZeroValueUsable(t *testing.T) {
	var table HintTable
	_, added := table.Upsert(hintFor(1, false))
	assert.True(t, added)
	assert.Equal(t, 1, table.Len())
}

func TestHintTable_RowsIsCopy(t *testing.T) {
	table := NewHintTable()
	table.Upsert(hintFor(1, false))

	rows := table.Rows()
	rows[0].Found = true

	got, ok := table.Get(hintFor(1, false).Key)
	require.True(t, ok)
	assert.False(t, got.Found)
}

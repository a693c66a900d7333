// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the session state shown by the client.
//
// # Key Types
//
//   - Log: append-only sequence of marked-up lines, in arrival order
//   - Line: one stored line with its ID and arrival time
//   - Hint: an item hint (sender, receiver, item, location, found)
//   - HintKey: identity of the hinted item placement
//   - HintTable: hints in arrival order, updated in place by identity
//
// # Usage
//
//	log := model.NewLog()
//	log.Append("#EE00EEAlice found a #AF99EFHookshot")
//
//	hints := model.NewHintTable()
//	hints.Upsert(h)      // new identity appends
//	h.Found = true
//	hints.Upsert(h)      // same identity replaces in place
//
// Neither type is safe for concurrent use; both are owned by the single
// UI goroutine.
package model

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archipelago

import (
	"fmt"
	"strconv"
	"sync"
)

// =============================================================================
// DATA PACKAGE
// =============================================================================

// gameNames holds the reverse tables of one game.
type gameNames struct {
	items     map[int64]string
	locations map[int64]string
}

// DataPackage resolves item and location IDs to names per game.
// It is safe for concurrent use.
type DataPackage struct {
	mu    sync.RWMutex
	games map[string]gameNames
}

// NewDataPackage creates an empty name table.
func NewDataPackage() *DataPackage {
	return &DataPackage{games: make(map[string]gameNames)}
}

// Load adds or replaces the tables for every game in data.
func (d *DataPackage) Load(data map[string]GameData) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for game, gd := range data {
		names := gameNames{
			items:     make(map[int64]string, len(gd.ItemNameToID)),
			locations: make(map[int64]string, len(gd.LocationNameToID)),
		}
		for name, id := range gd.ItemNameToID {
			names.items[id] = name
		}
		for name, id := range gd.LocationNameToID {
			names.locations[id] = name
		}
		d.games[game] = names
	}
}

// Games returns the number of loaded games.
func (d *DataPackage) Games() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.games)
}

// ItemName returns the name of item id in game. Unknown IDs resolve to a
// placeholder so messages stay readable.
func (d *DataPackage) ItemName(game string, id int64) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if name, ok := d.games[game].items[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown item (ID: %d)", id)
}

// LocationName returns the name of location id in game.
func (d *DataPackage) LocationName(game string, id int64) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if name, ok := d.games[game].locations[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown location (ID: %d)", id)
}

// =============================================================================
// PLAYERS
// =============================================================================

// Player is a slot in the room.
type Player struct {
	Team  int
	Slot  int
	Alias string
	Name  string
	Game  string
}

// Roster maps slots to players for the local team.
type Roster struct {
	mu      sync.RWMutex
	team    int
	players map[int]Player
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{players: make(map[int]Player)}
}

// Reset replaces the roster from a Connected packet.
func (r *Roster) Reset(team int, players []NetworkPlayer, slots map[string]NetworkSlot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.team = team
	r.players = make(map[int]Player, len(slots))

	// Slot 0 is the server itself.
	r.players[0] = Player{Team: team, Slot: 0, Alias: "Archipelago", Name: "Archipelago", Game: "Archipelago"}

	for key, info := range slots {
		slot, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		r.players[slot] = Player{Team: team, Slot: slot, Alias: info.Name, Name: info.Name, Game: info.Game}
	}
	r.updateLocked(players)
}

// Update applies alias changes from a RoomUpdate packet.
func (r *Roster) Update(players []NetworkPlayer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateLocked(players)
}

func (r *Roster) updateLocked(players []NetworkPlayer) {
	for _, np := range players {
		if np.Team != r.team {
			continue
		}
		p := r.players[np.Slot]
		p.Team = np.Team
		p.Slot = np.Slot
		p.Alias = np.Alias
		if np.Name != "" {
			p.Name = np.Name
		}
		r.players[np.Slot] = p
	}
}

// Player returns the player in slot. Unknown slots get a placeholder alias.
func (r *Roster) Player(slot int) Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.players[slot]; ok {
		return p
	}
	return Player{Team: r.team, Slot: slot, Alias: fmt.Sprintf("Unknown player (Slot: %d)", slot)}
}

// Len returns the number of known slots, including the server slot.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

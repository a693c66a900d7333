// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archipelago

import (
	"encoding/json"
	"fmt"
)

// Every websocket frame carries a JSON array of packets, each an object
// with a "cmd" field naming its type.

// Command names used by the client.
const (
	CmdRoomInfo          = "RoomInfo"
	CmdGetDataPackage    = "GetDataPackage"
	CmdDataPackage       = "DataPackage"
	CmdConnect           = "Connect"
	CmdConnected         = "Connected"
	CmdConnectionRefused = "ConnectionRefused"
	CmdRoomUpdate        = "RoomUpdate"
	CmdPrintJSON         = "PrintJSON"
	CmdSay               = "Say"
	CmdGet               = "Get"
	CmdRetrieved         = "Retrieved"
	CmdSetNotify         = "SetNotify"
	CmdSetReply          = "SetReply"
)

// =============================================================================
// SHARED TYPES
// =============================================================================

// NetworkVersion is the protocol version announced on Connect.
type NetworkVersion struct {
	Major int    `json:"major"`
	Minor int    `json:"minor"`
	Build int    `json:"build"`
	Class string `json:"class"`
}

// ClientVersion is the protocol version this client speaks.
var ClientVersion = NetworkVersion{Major: 0, Minor: 5, Build: 0, Class: "Version"}

// NetworkPlayer describes one slot as listed in Connected and RoomUpdate.
type NetworkPlayer struct {
	Team  int    `json:"team"`
	Slot  int    `json:"slot"`
	Alias string `json:"alias"`
	Name  string `json:"name"`
}

// NetworkSlot carries static slot information, keyed by slot number.
type NetworkSlot struct {
	Name string `json:"name"`
	Game string `json:"game"`
	Type int    `json:"type"`
}

// NetworkHint is a hint as stored in the server's data storage.
type NetworkHint struct {
	ReceivingPlayer int    `json:"receiving_player"`
	FindingPlayer   int    `json:"finding_player"`
	Location        int64  `json:"location"`
	Item            int64  `json:"item"`
	Found           bool   `json:"found"`
	Entrance        string `json:"entrance"`
	ItemFlags       int    `json:"item_flags"`
	Status          int    `json:"status"`
}

// JSONMessagePart is one part of a PrintJSON message.
type JSONMessagePart struct {
	Type       string `json:"type,omitempty"`
	Text       string `json:"text,omitempty"`
	Color      string `json:"color,omitempty"`
	Flags      int    `json:"flags,omitempty"`
	Player     int    `json:"player,omitempty"`
	HintStatus int    `json:"hint_status,omitempty"`
}

// GameData holds the name tables for one game.
type GameData struct {
	ItemNameToID     map[string]int64 `json:"item_name_to_id"`
	LocationNameToID map[string]int64 `json:"location_name_to_id"`
	Checksum         string           `json:"checksum,omitempty"`
}

// =============================================================================
// SERVER PACKETS
// =============================================================================

// RoomInfoPacket is the first packet sent by the server.
type RoomInfoPacket struct {
	Version              NetworkVersion    `json:"version"`
	GeneratorVersion     NetworkVersion    `json:"generator_version"`
	Tags                 []string          `json:"tags"`
	Password             bool              `json:"password"`
	Games                []string          `json:"games"`
	DataPackageChecksums map[string]string `json:"datapackage_checksums"`
	SeedName             string            `json:"seed_name"`
	Time                 float64           `json:"time"`
	HintCost             int               `json:"hint_cost"`
	LocationCheckPoints  int               `json:"location_check_points"`
}

// DataPackagePacket answers GetDataPackage.
type DataPackagePacket struct {
	Data struct {
		Games map[string]GameData `json:"games"`
	} `json:"data"`
}

// ConnectedPacket confirms a successful Connect.
type ConnectedPacket struct {
	Team       int                    `json:"team"`
	Slot       int                    `json:"slot"`
	Players    []NetworkPlayer        `json:"players"`
	SlotInfo   map[string]NetworkSlot `json:"slot_info"`
	HintPoints int                    `json:"hint_points"`
}

// ConnectionRefusedPacket rejects a Connect.
type ConnectionRefusedPacket struct {
	Errors []string `json:"errors"`
}

// RoomUpdatePacket carries changed room state. Only players is read.
type RoomUpdatePacket struct {
	Players []NetworkPlayer `json:"players"`
}

// PrintJSONPacket is a chat or event message.
type PrintJSONPacket struct {
	Data      []JSONMessagePart `json:"data"`
	Type      string            `json:"type"`
	Receiving int               `json:"receiving"`
	Slot      int               `json:"slot"`
	Message   string            `json:"message"`
	Found     *bool             `json:"found"`
}

// RetrievedPacket answers Get.
type RetrievedPacket struct {
	Keys map[string]json.RawMessage `json:"keys"`
}

// SetReplyPacket reports a change to a watched key.
type SetReplyPacket struct {
	Key           string          `json:"key"`
	Value         json.RawMessage `json:"value"`
	OriginalValue json.RawMessage `json:"original_value"`
}

// =============================================================================
// CLIENT PACKETS
// =============================================================================

// ConnectPacket authenticates a slot.
type ConnectPacket struct {
	Cmd           string         `json:"cmd"`
	Password      string         `json:"password"`
	Game          string         `json:"game"`
	Name          string         `json:"name"`
	UUID          string         `json:"uuid"`
	Version       NetworkVersion `json:"version"`
	ItemsHandling int            `json:"items_handling"`
	Tags          []string       `json:"tags"`
	SlotData      bool           `json:"slot_data"`
}

// GetDataPackagePacket requests name tables for games.
type GetDataPackagePacket struct {
	Cmd   string   `json:"cmd"`
	Games []string `json:"games,omitempty"`
}

// SayPacket sends a chat message.
type SayPacket struct {
	Cmd  string `json:"cmd"`
	Text string `json:"text"`
}

// GetPacket reads data storage keys.
type GetPacket struct {
	Cmd  string   `json:"cmd"`
	Keys []string `json:"keys"`
}

// SetNotifyPacket subscribes to data storage changes.
type SetNotifyPacket struct {
	Cmd  string   `json:"cmd"`
	Keys []string `json:"keys"`
}

// =============================================================================
// FRAME CODEC
// =============================================================================

// Packet is a decoded packet with its raw body kept for typed decoding.
type Packet struct {
	Cmd  string
	Body json.RawMessage
}

// Decode unmarshals the packet body into v.
func (p Packet) Decode(v any) error {
	if err := json.Unmarshal(p.Body, v); err != nil {
		return fmt.Errorf("decode %s: %w", p.Cmd, err)
	}
	return nil
}

// DecodeFrame splits a websocket frame into packets.
func DecodeFrame(frame []byte) ([]Packet, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(frame, &raw); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	packets := make([]Packet, 0, len(raw))
	for _, body := range raw {
		var head struct {
			Cmd string `json:"cmd"`
		}
		if err := json.Unmarshal(body, &head); err != nil {
			return nil, fmt.Errorf("decode packet header: %w", err)
		}
		packets = append(packets, Packet{Cmd: head.Cmd, Body: body})
	}
	return packets, nil
}

// EncodeFrame wraps client packets into one frame.
func EncodeFrame(packets ...any) ([]byte, error) {
	return json.Marshal(packets)
}

// HintsKey returns the data storage key holding a slot's hints.
func HintsKey(team, slot int) string {
	return fmt.Sprintf("_read_hints_%d_%d", team, slot)
}

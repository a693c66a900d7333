// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archipelago

import (
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/jeranaias/aptui/internal/model"
)

// =============================================================================
// READ LOOP
// =============================================================================

// readLoop dispatches packets until the connection ends. pending holds
// packets left over from the handshake frame.
func (c *Client) readLoop(conn *websocket.Conn, pending []Packet, done chan struct{}) {
	defer close(done)

	for _, pkt := range pending {
		c.handle(pkt)
	}

	var cause error
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			cause = err
			break
		}
		packets, err := DecodeFrame(frame)
		if err != nil {
			c.log.Warn("dropping malformed frame", "error", err)
			continue
		}
		for _, pkt := range packets {
			c.handle(pkt)
		}
	}

	c.mu.Lock()
	userClosed := c.closing
	c.mu.Unlock()
	conn.Close()
	c.resetState()

	ev := DisconnectEvent{}
	if !userClosed && !websocket.IsCloseError(cause, websocket.CloseNormalClosure) {
		ev.Err = &ClientError{Type: ErrTypeConnection, Message: "connection lost", Cause: cause}
		c.log.Warn("connection lost", "error", cause)
	} else {
		c.log.Info("disconnected")
	}
	c.disconnects.emit(ev)
}

// handle dispatches one packet received after login.
func (c *Client) handle(pkt Packet) {
	switch pkt.Cmd {
	case CmdPrintJSON:
		var p PrintJSONPacket
		if err := pkt.Decode(&p); err != nil {
			c.log.Warn("bad packet", "error", err)
			return
		}
		c.messages.emit(MessageEvent{Type: p.Type, Nodes: c.resolver().nodes(p.Data)})

	case CmdRetrieved:
		var p RetrievedPacket
		if err := pkt.Decode(&p); err != nil {
			c.log.Warn("bad packet", "error", err)
			return
		}
		key := c.currentHintsKey()
		raw, ok := p.Keys[key]
		if !ok {
			return
		}
		hints, err := decodeHints(raw)
		if err != nil {
			c.log.Warn("bad hints value", "key", key, "error", err)
			return
		}
		c.initHints(hints)

	case CmdSetReply:
		var p SetReplyPacket
		if err := pkt.Decode(&p); err != nil {
			c.log.Warn("bad packet", "error", err)
			return
		}
		if p.Key != c.currentHintsKey() {
			return
		}
		hints, err := decodeHints(p.Value)
		if err != nil {
			c.log.Warn("bad hints value", "key", p.Key, "error", err)
			return
		}
		c.updateHints(hints)

	case CmdRoomUpdate:
		var p RoomUpdatePacket
		if err := pkt.Decode(&p); err != nil {
			c.log.Warn("bad packet", "error", err)
			return
		}
		if len(p.Players) > 0 {
			c.roster.Update(p.Players)
		}

	default:
		c.log.Debug("ignoring packet", "cmd", pkt.Cmd)
	}
}

func (c *Client) resolver() resolver {
	return resolver{roster: c.roster, names: c.names}
}

func (c *Client) currentHintsKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hintsKey
}

// =============================================================================
// HINTS
// =============================================================================

func decodeHints(raw json.RawMessage) ([]NetworkHint, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var hints []NetworkHint
	if err := json.Unmarshal(raw, &hints); err != nil {
		return nil, err
	}
	return hints, nil
}

func keyOf(h NetworkHint) model.HintKey {
	return model.HintKey{
		FindingPlayer:   h.FindingPlayer,
		ReceivingPlayer: h.ReceivingPlayer,
		Location:        h.Location,
		Item:            h.Item,
	}
}

// initHints records the full hint list and emits it.
func (c *Client) initHints(hints []NetworkHint) {
	known := make(map[model.HintKey]NetworkHint, len(hints))
	rows := make([]model.Hint, 0, len(hints))
	r := c.resolver()
	for _, h := range hints {
		known[keyOf(h)] = h
		rows = append(rows, r.hint(h))
	}

	c.mu.Lock()
	c.hints = known
	c.mu.Unlock()

	c.log.Debug("hints initialized", "count", len(rows))
	c.hintsInit.emit(rows)
}

// updateHints emits one event for every hint in the new value that is new
// or differs from what was last seen.
func (c *Client) updateHints(hints []NetworkHint) {
	var changed []NetworkHint

	c.mu.Lock()
	if c.hints == nil {
		c.hints = make(map[model.HintKey]NetworkHint)
	}
	for _, h := range hints {
		key := keyOf(h)
		if prev, ok := c.hints[key]; ok && prev == h {
			continue
		}
		c.hints[key] = h
		changed = append(changed, h)
	}
	c.mu.Unlock()

	r := c.resolver()
	for _, h := range changed {
		c.hintUpdated.emit(r.hint(h))
	}
}

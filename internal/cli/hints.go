// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muesli/termenv"

	"github.com/jeranaias/aptui/internal/archipelago"
	"github.com/jeranaias/aptui/internal/model"
	"github.com/jeranaias/aptui/internal/ui/components"
	"github.com/jeranaias/aptui/internal/ui/styles"
	"github.com/jeranaias/aptui/internal/util"
)

// maxHintColumnWidth caps one column of the printed table.
const maxHintColumnWidth = 40

// HintsCmd prints the hints of the logged in slot.
type HintsCmd struct {
	Conn    ConnectFlags  `embed:""`
	Wait    time.Duration `default:"10s" help:"How long to wait for the server to send hints."`
	Pending bool          `help:"Only print hints that are not found yet."`
	Plain   bool          `help:"Print without color."`
}

// Run implements the hints command.
func (c *HintsCmd) Run(g *Globals) error {
	ctx := context.Background()
	client := NewClient(g.Config)

	received := make(chan []model.Hint, 1)
	sub := client.OnHintsInitialized(func(rows []model.Hint) {
		select {
		case received <- append([]model.Hint(nil), rows...):
		default:
		}
	})
	defer sub.Unsubscribe()

	if _, err := Connect(ctx, g, client, c.Conn); err != nil {
		return err
	}
	defer client.Disconnect()

	var rows []model.Hint
	select {
	case rows = <-received:
	case <-time.After(c.Wait):
		return &archipelago.ClientError{Type: archipelago.ErrTypeTimeout, Message: "timed out waiting for hints"}
	}

	if c.Pending {
		rows = PendingHints(rows)
	}

	out := NewOutput(g.Stdout)
	if c.Plain {
		out = termenv.NewOutput(g.Stdout, termenv.WithProfile(termenv.Ascii))
	}
	PrintHints(g.Stdout, out, rows, client.Self().Slot)
	return nil
}

// PendingHints returns the hints that are not found, in order.
func PendingHints(rows []model.Hint) []model.Hint {
	var pending []model.Hint
	for _, h := range rows {
		if !h.Found {
			pending = append(pending, h)
		}
	}
	return pending
}

// PrintHints writes rows as an aligned table followed by a found count.
// Cells are colored like the TUI hints table.
func PrintHints(w io.Writer, out *termenv.Output, rows []model.Hint, selfSlot int) {
	if len(rows) == 0 {
		fmt.Fprintln(w, components.EmptyHintsText)
		return
	}

	header := []string{"Sender", "Receiver", "Item", "Location", "Status"}
	cells := make([][]string, len(rows))
	for i, h := range rows {
		cells[i] = []string{h.Sender, h.Receiver, h.Item, h.LocationLabel(), h.StatusLabel()}
	}

	widths := make([]int, len(header))
	for col, name := range header {
		widths[col] = util.StringWidth(name)
		for _, row := range cells {
			widths[col] = max(widths[col], util.StringWidth(row[col]))
		}
		widths[col] = min(widths[col], maxHintColumnWidth)
	}

	var b strings.Builder
	for col, name := range header {
		b.WriteString(out.String(util.PadRight(name, widths[col])).Bold().String())
		b.WriteString(columnGap(col, len(header)))
	}
	fmt.Fprintln(w, strings.TrimRight(b.String(), " "))

	found := 0
	for i, h := range rows {
		if h.Found {
			found++
		}
		b.Reset()
		for col, cell := range cells[i] {
			text := util.PadRight(util.TruncateWidth(cell, widths[col]), widths[col])
			if color, ok := hintCellColor(h, col, selfSlot); ok {
				text = out.String(text).Foreground(out.Color(color)).String()
			}
			b.WriteString(text)
			b.WriteString(columnGap(col, len(header)))
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	fmt.Fprintf(w, "\n%d/%d found\n", found, len(rows))
}

func columnGap(col, n int) string {
	if col == n-1 {
		return ""
	}
	return "  "
}

// hintCellColor picks the color of one cell: the local slot's name, the
// item by classification, and the status when found.
func hintCellColor(h model.Hint, col, selfSlot int) (string, bool) {
	switch col {
	case 0:
		if selfSlot != 0 && h.SenderSlot == selfSlot {
			return string(styles.HintSelf), true
		}
	case 1:
		if selfSlot != 0 && h.ReceiverSlot == selfSlot {
			return string(styles.HintSelf), true
		}
	case 2:
		if c, ok := components.ItemColor(h.ItemFlags); ok {
			return string(c), true
		}
	case 4:
		if h.Found {
			return string(styles.HintFound), true
		}
	}
	return "", false
}

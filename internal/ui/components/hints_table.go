// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jeranaias/aptui/internal/model"
	"github.com/jeranaias/aptui/internal/ui/styles"
	"github.com/jeranaias/aptui/internal/util"
)

// EmptyHintsText is shown when there are no hints.
const EmptyHintsText = "No hints available."

// Column indexes of the hints table.
const (
	colSender = iota
	colReceiver
	colItem
	colLocation
	colStatus
)

var hintHeaders = []string{"Sender", "Receiver", "Item", "Location", "Status"}

// hintColumnWeights splits the width 1:1:2:2:1 across the columns.
var hintColumnWeights = []int{1, 1, 2, 2, 1}

// =============================================================================
// HINTS TABLE
// =============================================================================

// HintsTable renders the hints of the current session.
type HintsTable struct {
	rows     []model.Hint
	selfSlot int
	width    int
	height   int
	offset   int
	theme    *styles.Theme
}

// NewHintsTable creates an empty hints table.
func NewHintsTable(theme *styles.Theme) *HintsTable {
	return &HintsTable{
		width:  80,
		height: 10,
		theme:  theme,
	}
}

// SetHints replaces the displayed rows.
func (h *HintsTable) SetHints(rows []model.Hint) {
	h.rows = rows
	h.clampOffset()
}

// SetSelf sets the local slot whose name is highlighted. Zero disables it.
func (h *HintsTable) SetSelf(slot int) {
	h.selfSlot = slot
}

// SetSize sets the outer width and the number of visible rows.
func (h *HintsTable) SetSize(width, height int) {
	h.width = width
	if height < 1 {
		height = 1
	}
	h.height = height
	h.clampOffset()
}

// ScrollDown moves the visible window n rows down.
func (h *HintsTable) ScrollDown(n int) {
	h.offset += n
	h.clampOffset()
}

// ScrollUp moves the visible window n rows up.
func (h *HintsTable) ScrollUp(n int) {
	h.offset -= n
	h.clampOffset()
}

func (h *HintsTable) clampOffset() {
	last := len(h.rows) - h.height
	if h.offset > last {
		h.offset = last
	}
	if h.offset < 0 {
		h.offset = 0
	}
}

// Summary returns "<found>/<total> found".
func (h *HintsTable) Summary() string {
	found := 0
	for _, row := range h.rows {
		if row.Found {
			found++
		}
	}
	return fmt.Sprintf("%d/%d found", found, len(h.rows))
}

// columnWidths returns the content width of each column.
func (h *HintsTable) columnWidths() []int {
	// Borders: one per column plus the outer edge, and one space of
	// padding on each side of every cell.
	avail := h.width - (len(hintHeaders) + 1) - 2*len(hintHeaders)
	total := 0
	for _, w := range hintColumnWeights {
		total += w
	}

	widths := make([]int, len(hintColumnWeights))
	for i, w := range hintColumnWeights {
		widths[i] = avail * w / total
		if widths[i] < len(hintHeaders[i]) {
			widths[i] = len(hintHeaders[i])
		}
	}
	return widths
}

// View renders the visible rows, or the empty notice.
func (h *HintsTable) View() string {
	if len(h.rows) == 0 {
		return h.theme.TableEmpty.Render(EmptyHintsText)
	}

	widths := h.columnWidths()
	end := h.offset + h.height
	if end > len(h.rows) {
		end = len(h.rows)
	}
	visible := h.rows[h.offset:end]

	cells := make([][]string, len(visible))
	for i, row := range visible {
		cells[i] = []string{
			util.PadRight(row.Sender, widths[colSender]),
			util.PadRight(row.Receiver, widths[colReceiver]),
			util.PadRight(row.Item, widths[colItem]),
			util.PadRight(row.LocationLabel(), widths[colLocation]),
			util.PadRight(row.StatusLabel(), widths[colStatus]),
		}
	}

	headers := make([]string, len(hintHeaders))
	for i, title := range hintHeaders {
		headers[i] = util.PadRight(title, widths[i])
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(h.theme.TableBorder).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return h.theme.TableHeader
			}
			return h.cellStyle(visible[row], col)
		})

	return t.String()
}

// cellStyle colors one cell. Item precedence is progression, useful,
// trap, filler. Names of the local slot are highlighted and found hints
// show a green status.
func (h *HintsTable) cellStyle(row model.Hint, col int) lipgloss.Style {
	style := h.theme.TableCell
	switch col {
	case colSender:
		if h.isSelf(row.SenderSlot) {
			return style.Foreground(styles.HintSelf)
		}
	case colReceiver:
		if h.isSelf(row.ReceiverSlot) {
			return style.Foreground(styles.HintSelf)
		}
	case colItem:
		if c, ok := ItemColor(row.ItemFlags); ok {
			return style.Foreground(c)
		}
	case colStatus:
		if row.Found {
			return style.Foreground(styles.HintFound)
		}
	}
	return style
}

func (h *HintsTable) isSelf(slot int) bool {
	return h.selfSlot != 0 && slot == h.selfSlot
}

// ItemColor returns the hints table color for an item classification.
func ItemColor(flags model.ItemFlags) (lipgloss.Color, bool) {
	switch {
	case flags.Progression():
		return styles.HintProgression, true
	case flags.Useful():
		return styles.HintUseful, true
	case flags.Trap():
		return styles.HintTrap, true
	case flags.Filler():
		return styles.HintFiller, true
	}
	return "", false
}

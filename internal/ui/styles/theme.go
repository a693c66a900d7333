// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderBrand    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// CONNECTION STATE STYLES
	// ==========================================================================

	StateConnected    lipgloss.Style
	StateConnecting   lipgloss.Style
	StateDisconnected lipgloss.Style

	// ==========================================================================
	// CONNECT FORM STYLES
	// ==========================================================================

	FormBox           lipgloss.Style
	FormTitle         lipgloss.Style
	FormLabel         lipgloss.Style
	FormLabelFocused  lipgloss.Style
	FormButton        lipgloss.Style
	FormButtonFocused lipgloss.Style

	// ==========================================================================
	// LOG AND INPUT STYLES
	// ==========================================================================

	LogPanel       lipgloss.Style
	Timestamp      lipgloss.Style
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	Placeholder    lipgloss.Style

	// ==========================================================================
	// HINTS TABLE STYLES
	// ==========================================================================

	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
	TableBorder lipgloss.Style
	TableEmpty  lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style
}

// NewTheme creates a theme for the detected terminal background.
func NewTheme() *Theme {
	return NewThemeFor("auto")
}

// NewThemeFor creates a theme for mode "dark", "light" or "auto".
// Forcing a mode also switches lipgloss adaptive colors.
func NewThemeFor(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Connection state
	t.StateConnected = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StateConnecting = lipgloss.NewStyle().
		Foreground(Amber)

	t.StateDisconnected = lipgloss.NewStyle().
		Foreground(Rose)

	// Connect form
	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.FormTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginBottom(1)

	t.FormLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Width(12)

	t.FormLabelFocused = t.FormLabel.
		Foreground(Cyan).
		Bold(true)

	t.FormButton = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 2)

	t.FormButtonFocused = t.FormButton.
		Foreground(TextInverse).
		Background(Purple).
		BorderForeground(Purple).
		Bold(true)

	// Log and input
	t.LogPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Hints table
	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Padding(0, 1)

	t.TableCell = lipgloss.NewStyle().
		Padding(0, 1)

	t.TableBorder = lipgloss.NewStyle().
		Foreground(OverlayDim)

	t.TableEmpty = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 2)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the aptui terminal client.

# Color System (colors.go)

UI chrome uses Lip Gloss AdaptiveColor for automatic light/dark terminal
detection:

	Purple, Cyan, Emerald - accents, focus, connected state
	Rose, Amber           - disconnected and connecting states
	TextPrimary ...       - text hierarchy

Message colors are the fixed Archipelago palette from the markup package.
TagColor and RoleColor convert them to lipgloss colors, and the Hint*
colors style the hints table.

# Theme System (theme.go)

	theme := styles.NewThemeFor(cfg.UI.Theme)
	header := theme.Header.Render("aptui")

# Segment Rendering (render.go)

Log lines are stored as inline markup and rendered on demand:

	view := styles.RenderLine("#EE00EEAlice found their #AF99EFHookshot")

TermenvLine does the same for a plain termenv output, which is how
"aptui tail" colors its stdout.
*/
package styles

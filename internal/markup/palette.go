// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import "strings"

// =============================================================================
// TAG
// =============================================================================

// Tag is a 6 hex digit RGB color value without the leading '#'.
type Tag string

// ParseTag parses "RRGGBB" or "#RRGGBB" in any letter case.
// The returned tag is upper case.
func ParseTag(s string) (Tag, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return "", false
		}
	}
	return Tag(strings.ToUpper(s)), true
}

// Valid reports whether t is exactly 6 hex digits.
func (t Tag) Valid() bool {
	if len(t) != 6 {
		return false
	}
	for i := 0; i < len(t); i++ {
		if !isHexDigit(t[i]) {
			return false
		}
	}
	return true
}

// Hex returns the tag as a CSS-style "#RRGGBB" color.
func (t Tag) Hex() string {
	return "#" + string(t)
}

func (t Tag) String() string {
	return string(t)
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// =============================================================================
// NAMED PALETTE
// =============================================================================

// The canonical Archipelago color set. Other clients of the game render
// the same names with these values.
const (
	Black     Tag = "000000"
	Red       Tag = "EE0000"
	Green     Tag = "00FF7F"
	Yellow    Tag = "FAFAD2"
	Blue      Tag = "6495ED"
	Magenta   Tag = "EE00EE"
	Cyan      Tag = "00EEEE"
	SlateBlue Tag = "6D8BE8"
	Plum      Tag = "AF99EF"
	Salmon    Tag = "FA8072"
	White     Tag = "FFFFFF"
	Orange    Tag = "FF7700"
)

var namedColors = map[string]Tag{
	"black":     Black,
	"red":       Red,
	"green":     Green,
	"yellow":    Yellow,
	"blue":      Blue,
	"magenta":   Magenta,
	"cyan":      Cyan,
	"slateblue": SlateBlue,
	"plum":      Plum,
	"salmon":    Salmon,
	"white":     White,
	"orange":    Orange,
}

// NamedColor resolves a palette name such as "plum" (case-insensitive).
func NamedColor(name string) (Tag, bool) {
	tag, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]
	return tag, ok
}

// ResolveColor accepts either a palette name or a literal "#RRGGBB" value.
// Formatting names without a color (bold, underline, backgrounds) do not
// resolve.
func ResolveColor(s string) (Tag, bool) {
	if tag, ok := NamedColor(s); ok {
		return tag, true
	}
	if strings.HasPrefix(s, "#") {
		return ParseTag(s)
	}
	return "", false
}

// =============================================================================
// ROLES
// =============================================================================

// Role is the semantic classification of a message segment.
type Role int

const (
	RoleNone            Role = iota // no color
	RoleSelfPlayer                  // the local player
	RoleUsefulItem                  // item flagged useful
	RoleProgressionItem             // item flagged progression
	RoleTrapItem                    // item flagged trap
	RoleLocation                    // location reference
	RoleExplicit                    // color carried on the segment itself
)

var roleNames = map[Role]string{
	RoleNone:            "none",
	RoleSelfPlayer:      "self-player",
	RoleUsefulItem:      "useful-item",
	RoleProgressionItem: "progression-item",
	RoleTrapItem:        "trap-item",
	RoleLocation:        "location",
	RoleExplicit:        "explicit",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// roleTags is the fixed role palette. RoleExplicit is absent on purpose:
// its tag travels with the segment.
var roleTags = map[Role]Tag{
	RoleSelfPlayer:      Magenta,
	RoleUsefulItem:      SlateBlue,
	RoleProgressionItem: Plum,
	RoleTrapItem:        Red,
	RoleLocation:        Green,
}

// PaletteRoles returns every role resolved through the fixed palette.
func PaletteRoles() []Role {
	return []Role{RoleSelfPlayer, RoleUsefulItem, RoleProgressionItem, RoleTrapItem, RoleLocation}
}

// RoleTag returns the palette tag for a role.
func RoleTag(r Role) (Tag, bool) {
	tag, ok := roleTags[r]
	return tag, ok
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind distinguishes plain from colored display text.
type Kind int

const (
	KindPlain Kind = iota
	KindColored
)

func (k Kind) String() string {
	if k == KindColored {
		return "colored"
	}
	return "plain"
}

// DisplaySegment is a run of text ready for rendering.
type DisplaySegment struct {
	Kind  Kind
	Color Tag // set for KindColored, as written in the line
	Text  string
}

// tagPattern matches '#', six hex digits, then the longest run of
// non-whitespace. The word class excludes the ASCII set covered by \s plus
// vertical tab, BOM and every Unicode separator.
var tagPattern = regexp.MustCompile(`#([0-9a-fA-F]{6})([^\s\x{0B}\x{FEFF}\p{Z}]*)`)

// Decode splits a marked-up line into display segments.
//
// Text before the first tag is taken from the start of the line. Text
// between two tags starts one character after the previous match, because
// Encode joins tagged words with a single space that is not shown. Text
// after the last tag starts right at the end of that match. A tag followed
// by whitespace or the end of the line produces no segment.
func Decode(line string) []DisplaySegment {
	matches := tagPattern.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		if line == "" {
			return nil
		}
		return []DisplaySegment{{Kind: KindPlain, Text: line}}
	}

	segs := make([]DisplaySegment, 0, len(matches)*2+1)
	last := 0
	for i, m := range matches {
		start := last
		if i > 0 {
			start = skipRune(line, last)
		}
		if m[0] > start {
			segs = append(segs, DisplaySegment{Kind: KindPlain, Text: line[start:m[0]]})
		}
		if word := line[m[4]:m[5]]; word != "" {
			segs = append(segs, DisplaySegment{
				Kind:  KindColored,
				Color: Tag(line[m[2]:m[3]]),
				Text:  word,
			})
		}
		last = m[1]
	}
	if last < len(line) {
		segs = append(segs, DisplaySegment{Kind: KindPlain, Text: line[last:]})
	}
	return segs
}

// skipRune returns the offset just past the rune starting at i.
func skipRune(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return i + size
}

// Visible concatenates the text of all segments.
func Visible(segs []DisplaySegment) string {
	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Strip removes all tags from a line and returns its visible text.
func Strip(line string) string {
	return Visible(Decode(line))
}

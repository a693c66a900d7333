// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// LINE TYPE
// =============================================================================

// Line is a single stored log line. Text holds the encoded markup and is
// never modified after the line is appended.
type Line struct {
	ID   string
	Text string
	At   time.Time
}

// =============================================================================
// LOG TYPE
// =============================================================================

// Log is the ordered message log of a session.
type Log struct {
	lines []Line
	now   func() time.Time
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Append adds a line to the end of the log and returns it.
func (l *Log) Append(text string) Line {
	line := Line{
		ID:   uuid.New().String(),
		Text: text,
		At:   l.timestamp(),
	}
	l.lines = append(l.lines, line)
	return line
}

func (l *Log) timestamp() time.Time {
	if l.now == nil {
		return time.Now()
	}
	return l.now()
}

// Lines returns a copy of all lines in arrival order.
func (l *Log) Lines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Since returns the lines appended after the first n.
func (l *Log) Since(n int) []Line {
	if n < 0 {
		n = 0
	}
	if n >= len(l.lines) {
		return nil
	}
	out := make([]Line, len(l.lines)-n)
	copy(out, l.lines[n:])
	return out
}

// Last returns the most recent line.
func (l *Log) Last() (Line, bool) {
	if len(l.lines) == 0 {
		return Line{}, false
	}
	return l.lines[len(l.lines)-1], true
}

// Len returns the number of lines.
func (l *Log) Len() int {
	return len(l.lines)
}

// IsEmpty returns true if the log holds no lines.
func (l *Log) IsEmpty() bool {
	return len(l.lines) == 0
}

// Clear drops every line. Only called when the session ends.
func (l *Log) Clear() {
	l.lines = nil
}

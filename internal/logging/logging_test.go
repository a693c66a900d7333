// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "level %q", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelInfo)
	l.With("component", "session").Info("attached", "subscriptions", 3)
	l.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "attached", rec["msg"])
	assert.Equal(t, "session", rec["component"])
	assert.EqualValues(t, 3, rec["subscriptions"])
}

func TestDiscard(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	l.With("a", 1).WithGroup("g").Error("nothing")
}

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "aptui.log")

	closeFn, err := Setup(path, "debug")
	require.NoError(t, err)

	For("archipelago").Debug("dialing", "url", "ws://localhost:38281")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"archipelago"`)
	assert.Contains(t, string(data), `"msg":"dialing"`)

	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

func TestSetup_EmptyPathDiscards(t *testing.T) {
	closeFn, err := Setup("", "info")
	require.NoError(t, err)
	assert.NoError(t, closeFn())
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup(filepath.Join(t.TempDir(), "x.log"), "shout")
	assert.Error(t, err)
}

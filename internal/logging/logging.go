// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides structured JSON logging for aptui.
//
// The terminal UI owns stdout, so log records go to a file. Components
// derive child loggers with a "component" attribute.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// =============================================================================
// GLOBAL LOGGER
// =============================================================================

var (
	mu     sync.RWMutex
	logger = Discard()
	closer io.Closer
)

// Logger returns the process-wide logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// For returns the global logger tagged with a component name.
func For(component string) *slog.Logger {
	return Logger().With("component", component)
}

// SetLogger replaces the process-wide logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = Discard()
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// ParseLevel converts "debug", "info", "warn" or "error" to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns a JSON logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Setup opens path for appending and installs a JSON logger at level as
// the global logger. An empty path installs Discard. The returned function
// closes the file.
func Setup(path, level string) (func() error, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if path == "" {
		SetLogger(Discard())
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	mu.Lock()
	prev := closer
	logger = New(f, lvl)
	closer = f
	mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	return func() error {
		mu.Lock()
		defer mu.Unlock()
		if closer == f {
			closer = nil
			logger = Discard()
		}
		return f.Close()
	}, nil
}

// discardHandler is a slog.Handler that is never enabled.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

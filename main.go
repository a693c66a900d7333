// aptui - a terminal client for Archipelago multiworld chat and hints.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/jeranaias/aptui/internal/cli"
	"github.com/jeranaias/aptui/internal/config"
	"github.com/jeranaias/aptui/internal/logging"
	"github.com/jeranaias/aptui/internal/ui/components"
	"github.com/jeranaias/aptui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for events from client goroutines
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate

	// Load .env before the config reads APTUI_* overrides.
	_ = godotenv.Load()
}

func main() {
	var c cli.CLI
	parser, err := cli.NewParser(&c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.ExitGeneralError)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	g, closeLog, err := c.Setup()
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}

	switch ctx.Command() {
	case "tui":
		err = runTUI(g, &c.TUI)
	default:
		err = ctx.Run(g)
	}
	closeLog()

	if err != nil {
		cli.DisplayError(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

// runTUI starts the TUI interface.
func runTUI(g *cli.Globals, args *cli.TUICmd) error {
	cfg := g.Config
	logger := logging.For("ui")

	theme := styles.NewThemeFor(cfg.UI.Theme)
	m := NewModel(theme, cfg)

	// Flags override the configured form defaults.
	req := components.ConnectRequestMsg{
		Server:   cfg.Server.URL,
		Slot:     cfg.Server.Slot,
		Password: cfg.Server.Password,
	}
	if args.Conn.Server != "" {
		req.Server = args.Conn.Server
	}
	if args.Conn.Slot != "" {
		req.Slot = args.Conn.Slot
	}
	if args.Conn.Password != "" {
		req.Password = args.Conn.Password
	}
	if args.Conn.Timeout > 0 {
		m.loginTimeout = args.Conn.Timeout
	}
	m.form.SetValues(req.Server, req.Slot, req.Password)
	m.autoConnect = args.Connect

	opts := []tea.ProgramOption{}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	// Store program reference for async operations
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if err := config.Watch(watchCtx, g.ConfigPath, config.DefaultWatchDebounce, func(cfg *config.Config, err error) {
		sendToProgram(ConfigReloadedMsg{Config: cfg, Err: err})
	}); err != nil {
		logger.Warn("config watch disabled", "error", err)
	}

	logger.Info("starting", "version", Version)
	_, err := p.Run()
	m.Shutdown()
	if err != nil {
		return fmt.Errorf("error running aptui: %w", err)
	}
	return nil
}

// sendToProgram delivers msg to the running program. Messages sent before
// the program exists are dropped.
func sendToProgram(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

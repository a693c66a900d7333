// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/jeranaias/aptui/internal/config"
	"github.com/jeranaias/aptui/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMAND TREE
// =============================================================================

// CLI is the aptui command line.
type CLI struct {
	ConfigFile string `name:"config-file" type:"path" placeholder:"PATH" help:"Read configuration from PATH instead of ~/.aptui."`
	LogLevel   string `name:"log-level" placeholder:"LEVEL" help:"Override logging.level (debug, info, warn, error)."`

	TUI     TUICmd     `cmd:"" name:"tui" default:"withargs" help:"Open the terminal UI (default)."`
	Tail    TailCmd    `cmd:"" help:"Stream decoded server messages to stdout."`
	Say     SayCmd     `cmd:"" help:"Send one chat message and exit."`
	Hints   HintsCmd   `cmd:"" help:"Print the hints of a slot."`
	Config  ConfigCmd  `cmd:"" help:"Inspect or edit configuration."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// ConnectFlags select the server and slot. Empty values fall back to the
// [server] section of the configuration.
type ConnectFlags struct {
	Server   string        `short:"s" placeholder:"HOST:PORT" help:"Server address or ws(s):// URL."`
	Slot     string        `short:"n" placeholder:"NAME" help:"Slot name."`
	Password string        `short:"p" help:"Room password."`
	Timeout  time.Duration `help:"Login timeout."`
}

// TUICmd opens the terminal UI. The connection flags prefill the form.
type TUICmd struct {
	Conn    ConnectFlags `embed:""`
	Connect bool         `short:"c" help:"Log in immediately instead of showing the form first."`
}

// NewParser builds the kong parser for c.
func NewParser(c *CLI, options ...kong.Option) (*kong.Kong, error) {
	opts := []kong.Option{
		kong.Name("aptui"),
		kong.Description("Terminal client for Archipelago multiworld chat and hints."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": Version},
	}
	return kong.New(c, append(opts, options...)...)
}

// =============================================================================
// GLOBALS
// =============================================================================

// Globals is bound into every command's Run method.
type Globals struct {
	Config     *config.Config
	ConfigPath string
	Stdout     io.Writer
	Stderr     io.Writer

	// Prompt reads a secret from the user; nil disables prompting
	Prompt func(prompt string) (string, error)
}

// Setup loads the configuration selected by the global flags and installs
// the file logger. The returned function closes the log file.
func (c *CLI) Setup() (*Globals, func() error, error) {
	g, err := c.LoadGlobals()
	if err != nil {
		return nil, nil, err
	}
	closeLog, err := logging.Setup(g.Config.Logging.Path, g.Config.Logging.Level)
	if err != nil {
		// Logging is diagnostic only; run without it.
		fmt.Fprintf(g.Stderr, "Warning: %v\n", err)
		closeLog = func() error { return nil }
	}
	return g, closeLog, nil
}

// LoadGlobals resolves the configuration without touching logging.
func (c *CLI) LoadGlobals() (*Globals, error) {
	g := &Globals{Stdout: os.Stdout, Stderr: os.Stderr}
	if CanPrompt() {
		g.Prompt = PromptPassword
	}

	if c.ConfigFile != "" {
		cfg, err := config.LoadFromPath(c.ConfigFile)
		if err != nil {
			return nil, &CommandError{Code: ExitConfigError, Err: err}
		}
		config.SetGlobal(cfg)
		g.Config = cfg
		g.ConfigPath = c.ConfigFile
	} else {
		g.Config = config.Global()
		path, err := config.ActivePath()
		if err != nil {
			return nil, &CommandError{Code: ExitConfigError, Err: err}
		}
		g.ConfigPath = path
	}

	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return nil, &CommandError{Code: ExitUsageError, Err: err}
		}
		g.Config.Logging.Level = c.LogLevel
	}
	return g, nil
}

// =============================================================================
// CONNECTION TARGET
// =============================================================================

// Target is a fully resolved login request.
type Target struct {
	Server   string
	Slot     string
	Password string
	Timeout  time.Duration
}

// Errors for unresolved targets.
var (
	ErrNoServer = errors.New("server address is required (--server or server.url)")
	ErrNoSlot   = errors.New("slot name is required (--slot or server.slot)")
)

// Resolve merges f over cfg. Flags win over configuration.
func (f ConnectFlags) Resolve(cfg *config.Config) (Target, error) {
	t := Target{
		Server:   cfg.Server.URL,
		Slot:     cfg.Server.Slot,
		Password: cfg.Server.Password,
		Timeout:  time.Duration(cfg.Server.ConnectTimeoutSecs) * time.Second,
	}
	if f.Server != "" {
		t.Server = f.Server
	}
	if f.Slot != "" {
		t.Slot = f.Slot
	}
	if f.Password != "" {
		t.Password = f.Password
	}
	if f.Timeout > 0 {
		t.Timeout = f.Timeout
	}

	if t.Server == "" {
		return t, &CommandError{Code: ExitUsageError, Err: ErrNoServer}
	}
	if t.Slot == "" {
		return t, &CommandError{Code: ExitUsageError, Err: ErrNoSlot}
	}
	return t, nil
}

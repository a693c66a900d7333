// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/aptui/internal/config"
)

// ConfigCmd groups the configuration subcommands.
type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"1" help:"Print the effective configuration."`
	Path ConfigPathCmd `cmd:"" help:"Print the configuration file path."`
	Init ConfigInitCmd `cmd:"" help:"Write a default configuration file."`
	Get  ConfigGetCmd  `cmd:"" help:"Print one setting."`
	Set  ConfigSetCmd  `cmd:"" help:"Change one setting in the configuration file."`
}

// ConfigShowCmd prints every setting. The password is redacted.
type ConfigShowCmd struct{}

// Run implements config show.
func (c *ConfigShowCmd) Run(g *Globals) error {
	fmt.Fprintln(g.Stdout, TitleStyle.Render("Configuration")+" "+ValueStyle.Render(g.ConfigPath))
	for _, key := range config.GetAllKeys() {
		v, err := g.Config.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(g.Stdout, "%s = %s\n", key, formatSetting(key, v))
	}
	return nil
}

// ConfigPathCmd prints the configuration file path.
type ConfigPathCmd struct{}

// Run implements config path.
func (c *ConfigPathCmd) Run(g *Globals) error {
	fmt.Fprintln(g.Stdout, g.ConfigPath)
	return nil
}

// ConfigInitCmd writes the defaults to the configuration file.
type ConfigInitCmd struct {
	Force bool `short:"f" help:"Overwrite an existing file."`
}

// Run implements config init.
func (c *ConfigInitCmd) Run(g *Globals) error {
	if _, err := os.Stat(g.ConfigPath); err == nil && !c.Force {
		return &CommandError{
			Code: ExitConfigError,
			Err:  fmt.Errorf("%s already exists (use --force to overwrite)", g.ConfigPath),
		}
	}
	if err := saveConfig(config.Default(), g.ConfigPath); err != nil {
		return err
	}
	fmt.Fprintln(g.Stdout, SuccessStyle.Render("Wrote")+" "+g.ConfigPath)
	return nil
}

// ConfigGetCmd prints one setting.
type ConfigGetCmd struct {
	Key string `arg:"" help:"Setting in dot notation, e.g. server.url."`
}

// Run implements config get.
func (c *ConfigGetCmd) Run(g *Globals) error {
	v, err := g.Config.Get(c.Key)
	if err != nil {
		return &CommandError{Code: ExitUsageError, Err: err}
	}
	fmt.Fprintln(g.Stdout, formatSetting(c.Key, v))
	return nil
}

// ConfigSetCmd changes one setting in the file. Environment overrides are
// not written back.
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Setting in dot notation, e.g. ui.show_timestamps."`
	Value string `arg:"" help:"New value. Lists are comma separated."`
}

// Run implements config set.
func (c *ConfigSetCmd) Run(g *Globals) error {
	cfg, err := loadFileOnly(g.ConfigPath)
	if err != nil {
		return &CommandError{Code: ExitConfigError, Err: err}
	}
	if err := cfg.Set(c.Key, c.Value); err != nil {
		return &CommandError{Code: ExitUsageError, Err: err}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := saveConfig(cfg, g.ConfigPath); err != nil {
		return err
	}
	fmt.Fprintf(g.Stdout, "%s = %s\n", c.Key, formatSetting(c.Key, mustGet(cfg, c.Key)))
	return nil
}

// loadFileOnly reads path over the defaults without environment overrides.
// A missing file yields the defaults.
func loadFileOnly(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if isJSONPath(path) {
		return cfg, config.LoadJSON(cfg, path)
	}
	return cfg, config.LoadTOML(cfg, path)
}

func saveConfig(cfg *config.Config, path string) error {
	if isJSONPath(path) {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

func isJSONPath(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".json")
}

func mustGet(cfg *config.Config, key string) interface{} {
	v, _ := cfg.Get(key)
	return v
}

// formatSetting renders a value for display.
func formatSetting(key string, v interface{}) string {
	switch val := v.(type) {
	case string:
		if key == "server.password" && val != "" {
			return "[REDACTED]"
		}
		return fmt.Sprintf("%q", val)
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
	}
	return fmt.Sprint(v)
}

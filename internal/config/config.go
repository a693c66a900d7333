// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for aptui.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.aptui/config.toml
//   - ~/.aptui/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/aptui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete aptui configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Server connection defaults
	Server ServerConfig `toml:"server" json:"server"`

	// Client protocol behavior
	Client ClientConfig `toml:"client" json:"client"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// ServerConfig holds the connection form defaults.
type ServerConfig struct {
	// URL is the server address, e.g. "archipelago.gg:38281"
	URL string `toml:"url" json:"url"`
	// Slot is the slot name to log in as
	Slot string `toml:"slot" json:"slot"`
	// Password is the room password. Prefer APTUI_PASSWORD or a .env file.
	Password string `toml:"password" json:"password"`
	// ConnectTimeoutSecs bounds dialing plus the login handshake
	ConnectTimeoutSecs int `toml:"connect_timeout_secs" json:"connect_timeout_secs"`
}

// ClientConfig controls protocol behavior.
type ClientConfig struct {
	// SayRatePerSec is the sustained chat message rate
	SayRatePerSec float64 `toml:"say_rate_per_sec" json:"say_rate_per_sec"`
	// SayBurst is how many chat messages may be sent at once
	SayBurst int `toml:"say_burst" json:"say_burst"`
	// Tags are announced to the server on Connect
	Tags []string `toml:"tags" json:"tags"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowTimestamps prefixes log lines with their arrival time
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// AltScreen runs the TUI in the terminal's alternate screen
	AltScreen bool `toml:"alt_screen" json:"alt_screen"`
	// Mouse enables mouse wheel scrolling of the log
	Mouse bool `toml:"mouse" json:"mouse"`
}

// LoggingConfig controls the diagnostic log file.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error"
	Level string `toml:"level" json:"level"`
	// Path is the log file; empty disables logging
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	logPath := ""
	if dir, err := ConfigDir(); err == nil {
		logPath = filepath.Join(dir, "aptui.log")
	}

	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			URL:                "archipelago.gg:38281",
			ConnectTimeoutSecs: 10,
		},

		Client: ClientConfig{
			SayRatePerSec: 2,
			SayBurst:      5,
			Tags:          []string{"TextOnly"},
		},

		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: false,
			AltScreen:      true,
			Mouse:          true,
		},

		Logging: LoggingConfig{
			Level: "info",
			Path:  logPath,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the aptui configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".aptui"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ActivePath returns the config file Load would read, or the TOML path
// if neither file exists.
func ActivePath() (string, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath, nil
	}
	return tomlPath, nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files may hold the room password and should be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	// Try JSON as fallback
	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	// Return defaults (with any load error for informational purposes)
	out, err := finish(cfg)
	if err != nil {
		return nil, err
	}
	return out, loadErr
}

// finish applies environment overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# aptui configuration file\n")
	buf.WriteString("# Generated by aptui - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Server
	if c.Server.URL != "" {
		if err := validateServerURL(c.Server.URL); err != nil {
			errs = append(errs, ValidationError{Field: "server.url", Message: err.Error()})
		}
	}
	if c.Server.ConnectTimeoutSecs < 1 || c.Server.ConnectTimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "server.connect_timeout_secs",
			Message: fmt.Sprintf("must be between 1 and 300, got %d", c.Server.ConnectTimeoutSecs),
		})
	}

	// Client
	if c.Client.SayRatePerSec <= 0 || c.Client.SayRatePerSec > 50 {
		errs = append(errs, ValidationError{
			Field:   "client.say_rate_per_sec",
			Message: fmt.Sprintf("must be greater than 0 and at most 50, got %g", c.Client.SayRatePerSec),
		})
	}
	if c.Client.SayBurst < 1 || c.Client.SayBurst > 100 {
		errs = append(errs, ValidationError{
			Field:   "client.say_burst",
			Message: fmt.Sprintf("must be between 1 and 100, got %d", c.Client.SayBurst),
		})
	}
	for _, tag := range c.Client.Tags {
		if strings.TrimSpace(tag) == "" {
			errs = append(errs, ValidationError{Field: "client.tags", Message: "tags must not be empty"})
			break
		}
	}

	// UI
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	// Logging
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateServerURL accepts host, host:port, or a ws/wss URL.
func validateServerURL(raw string) error {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "://"); i >= 0 {
		scheme := strings.ToLower(s[:i])
		if scheme != "ws" && scheme != "wss" {
			return fmt.Errorf("unsupported scheme '%s', must be ws or wss", scheme)
		}
		s = s[i+3:]
	}
	u, err := url.Parse("ws://" + s)
	if err != nil {
		return fmt.Errorf("invalid address: %v", err)
	}
	if u.Hostname() == "" {
		return errors.New("missing host")
	}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return fmt.Errorf("invalid port '%s'", p)
		}
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	// Server
	if c.Server.ConnectTimeoutSecs == 0 {
		c.Server.ConnectTimeoutSecs = defaults.Server.ConnectTimeoutSecs
	}

	// Client
	if c.Client.SayRatePerSec == 0 {
		c.Client.SayRatePerSec = defaults.Client.SayRatePerSec
	}
	if c.Client.SayBurst == 0 {
		c.Client.SayBurst = defaults.Client.SayBurst
	}
	if len(c.Client.Tags) == 0 {
		c.Client.Tags = defaults.Client.Tags
	}

	// UI
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - APTUI_SERVER: overrides server.url
//   - APTUI_SLOT: overrides server.slot
//   - APTUI_PASSWORD: overrides server.password
//   - APTUI_LOG_LEVEL: overrides logging.level
//   - APTUI_LOG_PATH: overrides logging.path
//   - APTUI_TIMESTAMPS: overrides ui.show_timestamps
func (c *Config) ApplyEnvOverrides() {
	if server := os.Getenv("APTUI_SERVER"); server != "" {
		c.Server.URL = server
	}

	if slot := os.Getenv("APTUI_SLOT"); slot != "" {
		c.Server.Slot = slot
	}

	if password := os.Getenv("APTUI_PASSWORD"); password != "" {
		c.Server.Password = password
	}

	if level := os.Getenv("APTUI_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}

	// An explicitly empty APTUI_LOG_PATH disables the log file.
	if path, ok := os.LookupEnv("APTUI_LOG_PATH"); ok {
		c.Logging.Path = path
	}

	if ts := os.Getenv("APTUI_TIMESTAMPS"); ts != "" {
		c.UI.ShowTimestamps = ts == "1" || strings.ToLower(ts) == "true"
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "server.url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.show_timestamps").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup resolves a dotted key to a struct field.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// Handle string input with type conversion
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				var items []string
				for _, s := range strings.Split(strVal, ",") {
					if s = strings.TrimSpace(s); s != "" {
						items = append(items, s)
					}
				}
				field.Set(reflect.ValueOf(items))
				return nil
			}
		}
	}

	// Direct assignment for matching types
	val := reflect.ValueOf(value)
	if val.IsValid() && val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	// Type conversion for compatible types
	if val.IsValid() && val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"server.url",
		"server.slot",
		"server.password",
		"server.connect_timeout_secs",
		"client.say_rate_per_sec",
		"client.say_burst",
		"client.tags",
		"ui.theme",
		"ui.show_timestamps",
		"ui.alt_screen",
		"ui.mouse",
		"logging.level",
		"logging.path",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Client.Tags != nil {
		clone.Client.Tags = append([]string(nil), c.Client.Tags...)
	}
	return &clone
}

// String returns a string representation of the config for debugging.
// The room password is redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Server.Password != "" {
		safe.Server.Password = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal loads the config file at path and makes it the global
// configuration. On error the global configuration is left unchanged.
// Thread-safe.
func ReloadGlobal(path string) (*Config, error) {
	cfg, err := LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	SetGlobal(cfg)
	return cfg, nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}

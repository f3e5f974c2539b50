// Package config provides application configuration management for folio.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wethinkt/go-folio/internal/pageview"
	"github.com/wethinkt/go-folio/internal/scrollsync"
)

// Layout names where the summary pane sits.
const (
	LayoutSummaryLeft  = "summary-left"
	LayoutSummaryRight = "summary-right"
)

// Config holds the folio configuration.
type Config struct {
	Language string       `json:"language,omitempty"` // UI language tag (empty = detect)
	Theme    string       `json:"theme"`              // Theme name (embedded or in ~/.folio/themes)
	Layout   string       `json:"layout"`             // summary-left or summary-right
	Viewer   ViewerConfig `json:"viewer"`             // Viewport policy
	Sync     SyncConfig   `json:"sync"`               // Scroll sync between panes
	Watch    WatchConfig  `json:"watch"`              // Reload page count on file change
	Store    StoreConfig  `json:"store"`              // Reading position persistence
	Server   ServerConfig `json:"server"`             // Event server for read --listen
}

// ViewerConfig holds the viewport's policy constants. Heights are in
// terminal rows.
type ViewerConfig struct {
	Buffer          int    `json:"buffer"`           // Pages kept each side of the current page
	Hysteresis      int    `json:"hysteresis"`       // Minimum window change for organic reloads
	PlaceholderRows int    `json:"placeholder_rows"` // Assumed height of unrendered pages
	Reload          string `json:"reload"`           // Window reload debounce (e.g. "200ms")
	Settle          string `json:"settle"`           // Settle debounce
	Navigate        string `json:"navigate"`         // Navigation commit timeout
	Persist         string `json:"persist"`          // Position save debounce
}

// Policy converts the settings to a pageview.Config. Unparseable durations
// fall back to the stock values.
func (c ViewerConfig) Policy() pageview.Config {
	d := pageview.DefaultConfig()
	cfg := pageview.Config{
		Buffer:      c.Buffer,
		Hysteresis:  c.Hysteresis,
		Placeholder: c.PlaceholderRows,
		Reload:      durationOr(c.Reload, d.Reload),
		Settle:      durationOr(c.Settle, d.Settle),
		Navigate:    durationOr(c.Navigate, d.Navigate),
		Persist:     durationOr(c.Persist, d.Persist),
	}
	if cfg.Buffer < 0 {
		cfg.Buffer = d.Buffer
	}
	return cfg
}

// SyncConfig holds scroll sync settings.
type SyncConfig struct {
	Enabled   bool   `json:"enabled"`
	Threshold int    `json:"threshold"` // Rows below which a sync is skipped
	Debounce  string `json:"debounce"`  // Echo suppression window (e.g. "50ms")
}

// Options converts the settings to scrollsync.Options.
func (c SyncConfig) Options() scrollsync.Options {
	d := scrollsync.DefaultOptions()
	return scrollsync.Options{
		Enabled:   c.Enabled,
		Threshold: c.Threshold,
		Debounce:  durationOr(c.Debounce, d.Debounce),
	}
}

// WatchConfig controls document file watching.
type WatchConfig struct {
	Enabled  bool   `json:"enabled"`
	Debounce string `json:"debounce"`
}

// DebounceDuration returns the parsed debounce duration (default: 500ms).
func (c WatchConfig) DebounceDuration() time.Duration {
	return durationOr(c.Debounce, 500*time.Millisecond)
}

// StoreConfig selects the position store.
type StoreConfig struct {
	Driver string `json:"driver"`         // duckdb, json or memory
	Path   string `json:"path,omitempty"` // Empty = inside the config directory
}

// ResolvedPath returns Path, or the default file for Driver.
func (c StoreConfig) ResolvedPath() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if c.Driver == "json" {
		return filepath.Join(dir, "positions.json"), nil
	}
	return filepath.Join(dir, "positions.duckdb"), nil
}

// ServerConfig holds the event server listen address.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func durationOr(s string, def time.Duration) time.Duration {
	if s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// Dir returns the path to the .folio directory. FOLIO_HOME overrides it.
func Dir() (string, error) {
	if dir := os.Getenv("FOLIO_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".folio"), nil
}

// Path returns the path to the main config file.
func Path() (string, error) {
	configDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// Load loads the configuration from ~/.folio/config.json.
func Load() (Config, error) {
	configPath, err := Path()
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		cfg := Default()
		if saveErr := Save(cfg); saveErr != nil {
			return cfg, nil // return defaults even if save fails
		}
		return cfg, nil
	} else if err != nil {
		return Config{}, err
	}

	// Start from defaults so missing keys get correct values.
	config := Default()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", configPath, err)
	}
	if config.Layout != LayoutSummaryLeft && config.Layout != LayoutSummaryRight {
		config.Layout = LayoutSummaryLeft
	}
	if config.Theme == "" {
		config.Theme = "dark"
	}
	return config, nil
}

// Default returns a default configuration with all defaults set.
func Default() Config {
	return Config{
		Theme:  "dark",
		Layout: LayoutSummaryLeft,
		Viewer: ViewerConfig{
			Buffer:          5,
			Hysteresis:      2,
			PlaceholderRows: 40,
			Reload:          "200ms",
			Settle:          "800ms",
			Navigate:        "1s",
			Persist:         "500ms",
		},
		Sync: SyncConfig{
			Enabled:   true,
			Threshold: 1,
			Debounce:  "50ms",
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "500ms",
		},
		Store: StoreConfig{
			Driver: "duckdb",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8790,
		},
	}
}

// Save saves the configuration to ~/.folio/config.json.
func Save(config Config) error {
	configPath, err := Path()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

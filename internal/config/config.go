// Package config loads appshelf configuration.
//
// Precedence, lowest first:
//  1. Hardcoded defaults (NewConfig)
//  2. User config ($XDG_CONFIG_HOME/appshelf/config.yaml or ~/.config/appshelf/config.yaml)
//  3. Environment variables (APPSHELF_*)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. APPSHELF_LOCALE.
const EnvPrefix = "APPSHELF"

// Config represents the complete appshelf configuration.
type Config struct {
	Version int `yaml:"version" json:"version" ignored:"true"`

	// Locale is a BCP-47 tag used for every localized lookup.
	// Empty means detect from the environment.
	Locale string `yaml:"locale" json:"locale" envconfig:"LOCALE"`

	Appstream AppstreamConfig `yaml:"appstream" json:"appstream" envconfig:"APPSTREAM"`
	Backends  BackendsConfig  `yaml:"backends" json:"backends" envconfig:"BACKENDS"`
	Search    SearchConfig    `yaml:"search" json:"search" envconfig:"SEARCH"`
	Catalog   CatalogConfig   `yaml:"catalog" json:"catalog" envconfig:"CATALOG"`
	Log       LogConfig       `yaml:"log" json:"log" envconfig:"LOG"`
}

// AppstreamConfig configures where collections and icons are read from.
type AppstreamConfig struct {
	// Paths are glob patterns (doublestar syntax, ~ expanded) of collection files.
	Paths []string `yaml:"paths" json:"paths" envconfig:"PATHS"`
	// IconDirs are roots searched for cached icons.
	IconDirs []string `yaml:"icon_dirs" json:"icon_dirs" envconfig:"ICON_DIRS"`
	// ParseWorkers bounds concurrent file parsing (0 = NumCPU).
	ParseWorkers int `yaml:"parse_workers" json:"parse_workers" envconfig:"PARSE_WORKERS"`
	// IconCacheSize is the number of icon lookups memoized.
	IconCacheSize int `yaml:"icon_cache_size" json:"icon_cache_size" envconfig:"ICON_CACHE_SIZE"`
	// Watch reloads the store when collection directories change.
	Watch bool `yaml:"watch" json:"watch" envconfig:"WATCH"`
	// WatchDebounce coalesces bursts of file events.
	WatchDebounce time.Duration `yaml:"watch_debounce" json:"watch_debounce" envconfig:"WATCH_DEBOUNCE"`
}

// BackendsConfig configures backend discovery.
type BackendsConfig struct {
	// Enabled restricts discovery to these backend names (empty = all usable).
	Enabled []string `yaml:"enabled" json:"enabled" envconfig:"ENABLED"`
	// FlatpakCommand is the flatpak executable name or path.
	FlatpakCommand string `yaml:"flatpak_command" json:"flatpak_command" envconfig:"FLATPAK_COMMAND"`
	// FlatpakInstallations are installation roots searched for metainfo files.
	FlatpakInstallations []string `yaml:"flatpak_installations" json:"flatpak_installations" envconfig:"FLATPAK_INSTALLATIONS"`
	// DpkgStatus is the dpkg status database.
	DpkgStatus string `yaml:"dpkg_status" json:"dpkg_status" envconfig:"DPKG_STATUS"`
	// DpkgInfoDir holds the per-package file lists.
	DpkgInfoDir string `yaml:"dpkg_info_dir" json:"dpkg_info_dir" envconfig:"DPKG_INFO_DIR"`
	// CommandTimeout bounds each external package-manager command.
	CommandTimeout time.Duration `yaml:"command_timeout" json:"command_timeout" envconfig:"COMMAND_TIMEOUT"`
}

// SearchConfig configures CLI and MCP search output.
type SearchConfig struct {
	// MaxResults caps CLI and MCP result lists (0 = unlimited).
	MaxResults int `yaml:"max_results" json:"max_results" envconfig:"MAX_RESULTS"`
}

// CatalogConfig configures the coordinating loop and its worker pool.
type CatalogConfig struct {
	Workers            int `yaml:"workers" json:"workers" envconfig:"WORKERS"`
	InboxSize          int `yaml:"inbox_size" json:"inbox_size" envconfig:"INBOX_SIZE"`
	SelectionCacheSize int `yaml:"selection_cache_size" json:"selection_cache_size" envconfig:"SELECTION_CACHE_SIZE"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level" envconfig:"LEVEL"`
}

// DefaultAppstreamPaths are the well-known collection locations.
var DefaultAppstreamPaths = []string{
	"/usr/share/swcatalog/xml/*.xml",
	"/usr/share/swcatalog/xml/*.xml.gz",
	"/usr/share/swcatalog/yaml/*.yml",
	"/usr/share/swcatalog/yaml/*.yml.gz",
	"/usr/share/app-info/xmls/*.xml",
	"/usr/share/app-info/xmls/*.xml.gz",
	"/var/lib/app-info/xmls/*.xml",
	"/var/lib/app-info/xmls/*.xml.gz",
	"/var/lib/app-info/yaml/*.yml",
	"/var/lib/app-info/yaml/*.yml.gz",
	"/var/cache/app-info/xmls/*.xml",
	"/var/cache/app-info/xmls/*.xml.gz",
	"/var/lib/flatpak/appstream/*/*/active/appstream.xml.gz",
	"/var/lib/flatpak/appstream/*/*/active/appstream.xml",
	"~/.local/share/flatpak/appstream/*/*/active/appstream.xml.gz",
	"~/.local/share/flatpak/appstream/*/*/active/appstream.xml",
}

// DefaultIconDirs are the well-known cached icon roots.
var DefaultIconDirs = []string{
	"/usr/share/swcatalog/icons",
	"/usr/share/app-info/icons",
	"/var/lib/app-info/icons",
	"/var/cache/app-info/icons",
}

// ValidBackends lists the backend names discovery knows about.
var ValidBackends = []string{"dpkg", "flatpak"}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Appstream: AppstreamConfig{
			Paths:         append([]string(nil), DefaultAppstreamPaths...),
			IconDirs:      append([]string(nil), DefaultIconDirs...),
			IconCacheSize: 4096,
			WatchDebounce: 500 * time.Millisecond,
		},
		Backends: BackendsConfig{
			FlatpakCommand: "flatpak",
			FlatpakInstallations: []string{
				"/var/lib/flatpak",
				"~/.local/share/flatpak",
			},
			DpkgStatus:     "/var/lib/dpkg/status",
			DpkgInfoDir:    "/var/lib/dpkg/info",
			CommandTimeout: 30 * time.Second,
		},
		Search: SearchConfig{
			MaxResults: 50,
		},
		Catalog: CatalogConfig{
			Workers:            4,
			InboxSize:          64,
			SelectionCacheSize: 128,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/appshelf/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/appshelf/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "appshelf", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "appshelf", "config.yaml")
	}
	return filepath.Join(home, ".config", "appshelf", "config.yaml")
}

// Load reads the config file at path (the user config path when empty),
// applies environment overrides and validates the result.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetUserConfigPath()
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides lets APPSHELF_* variables replace file values.
// Unset variables leave fields untouched.
func (c *Config) applyEnvOverrides() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("failed to read %s_* environment: %w", EnvPrefix, err)
	}
	return nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if c.Locale != "" {
		if _, err := ParseLocale(c.Locale); err != nil {
			return fmt.Errorf("locale %q is not a valid language tag: %w", c.Locale, err)
		}
	}

	if c.Appstream.ParseWorkers < 0 {
		return fmt.Errorf("appstream.parse_workers must be non-negative, got %d", c.Appstream.ParseWorkers)
	}
	if c.Appstream.IconCacheSize < 0 {
		return fmt.Errorf("appstream.icon_cache_size must be non-negative, got %d", c.Appstream.IconCacheSize)
	}
	if c.Appstream.WatchDebounce < 0 {
		return fmt.Errorf("appstream.watch_debounce must be non-negative, got %s", c.Appstream.WatchDebounce)
	}

	for _, name := range c.Backends.Enabled {
		if !isValidBackend(name) {
			return fmt.Errorf("backends.enabled: unknown backend %q (known: %s)",
				name, strings.Join(ValidBackends, ", "))
		}
	}
	if c.Backends.CommandTimeout < 0 {
		return fmt.Errorf("backends.command_timeout must be non-negative, got %s", c.Backends.CommandTimeout)
	}

	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be non-negative, got %d", c.Search.MaxResults)
	}

	if c.Catalog.Workers < 1 {
		return fmt.Errorf("catalog.workers must be at least 1, got %d", c.Catalog.Workers)
	}
	if c.Catalog.InboxSize < 1 {
		return fmt.Errorf("catalog.inbox_size must be at least 1, got %d", c.Catalog.InboxSize)
	}
	if c.Catalog.SelectionCacheSize < 0 {
		return fmt.Errorf("catalog.selection_cache_size must be non-negative, got %d", c.Catalog.SelectionCacheSize)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("log.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Log.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ExpandHomeAll applies ExpandHome to each path.
func ExpandHomeAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = ExpandHome(p)
	}
	return out
}

// BackendEnabled reports whether discovery may register name.
func (c *Config) BackendEnabled(name string) bool {
	if len(c.Backends.Enabled) == 0 {
		return true
	}
	for _, n := range c.Backends.Enabled {
		if n == name {
			return true
		}
	}
	return false
}

func isValidBackend(name string) bool {
	for _, n := range ValidBackends {
		if n == name {
			return true
		}
	}
	return false
}

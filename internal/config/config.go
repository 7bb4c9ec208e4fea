// Package config loads pscan configuration from a YAML file, merging it
// over built-in defaults. Command-line flags override both.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// WatchConfig controls automatic rescans on filesystem changes.
type WatchConfig struct {
	// Enabled turns the fsnotify watcher on
	Enabled bool `yaml:"enabled"`

	// Debounce is the quiet period before a change triggers a rescan
	Debounce time.Duration `yaml:"-"`
}

// HistoryConfig controls the resolution history store.
type HistoryConfig struct {
	// Enabled turns history recording on
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the SQLite database
	DBPath string `yaml:"db_path"`
}

// WebConfig controls the local web UI.
type WebConfig struct {
	// Port is the listen port on 127.0.0.1
	Port int `yaml:"port"`
}

// Config represents pscan configuration options.
type Config struct {
	// Regex is the parameter expression with named capture groups
	Regex string `yaml:"regex"`

	// BasePath is the root directory to scan
	BasePath string `yaml:"base_path"`

	// LogLevel sets logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// Web contains web UI configuration
	Web WebConfig `yaml:"web"`

	// Watch contains filesystem watch configuration
	Watch WatchConfig `yaml:"watch"`

	// History contains resolution history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		BasePath: ".",
		LogLevel: "info",
		Web: WebConfig{
			Port: 8765,
		},
		Watch: WatchConfig{
			Enabled:  false,
			Debounce: 500 * time.Millisecond,
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  ".pscan/history.db",
		},
	}
}

// Load reads configuration from the given path. A missing file returns
// the defaults without error; a malformed file returns an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Durations arrive as strings in YAML, so parse through a shadow
	// struct and merge non-zero values over the defaults.
	type yamlWatch struct {
		Enabled  bool   `yaml:"enabled"`
		Debounce string `yaml:"debounce"`
	}
	type yamlConfig struct {
		Regex    string        `yaml:"regex"`
		BasePath string        `yaml:"base_path"`
		LogLevel string        `yaml:"log_level"`
		Web      WebConfig     `yaml:"web"`
		Watch    yamlWatch     `yaml:"watch"`
		History  HistoryConfig `yaml:"history"`
	}

	var yc yamlConfig
	yc.History = cfg.History
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if yc.Regex != "" {
		cfg.Regex = yc.Regex
	}
	if yc.BasePath != "" {
		cfg.BasePath = yc.BasePath
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}
	if yc.Web.Port != 0 {
		cfg.Web.Port = yc.Web.Port
	}
	cfg.Watch.Enabled = yc.Watch.Enabled
	if yc.Watch.Debounce != "" {
		d, err := time.ParseDuration(yc.Watch.Debounce)
		if err != nil {
			return nil, fmt.Errorf("invalid watch debounce %q: %w", yc.Watch.Debounce, err)
		}
		cfg.Watch.Debounce = d
	}
	cfg.History = yc.History

	return cfg, nil
}

// Validate checks that the configuration can drive a scan.
func (c *Config) Validate() error {
	if c.Regex == "" {
		return fmt.Errorf("no parameter expression configured; set regex in the config file or pass --regex")
	}
	if c.BasePath == "" {
		return fmt.Errorf("base_path must not be empty")
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port %d out of range", c.Web.Port)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all csvview configuration.
type Config struct {
	// Home is the state directory (database, logs). Not serialized.
	Home string `yaml:"-"`

	Table   TableConfig   `yaml:"table"`
	Storage StorageConfig `yaml:"storage"`
	Watch   WatchConfig   `yaml:"watch"`
	Server  ServerConfig  `yaml:"server"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig configures local persistence of the last loaded CSV.
type StorageConfig struct {
	// DatabasePath is relative to Home unless absolute.
	DatabasePath string `yaml:"database_path"`

	// MaxBytes is the largest CSV text that will be persisted (0 = unlimited).
	MaxBytes int64 `yaml:"max_bytes"`

	// Disabled turns persistence off entirely.
	Disabled bool `yaml:"disabled"`
}

// WatchConfig configures reloading when the loaded file changes on disk.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// ServerConfig configures `csvview serve`.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	OpenBrowser bool   `yaml:"open_browser"`
	MaxUpload   int64  `yaml:"max_upload"`
}

// envOverrides lists the CSVVIEW_* variables that override file settings.
type envOverrides struct {
	PageSize     int    `env:"CSVVIEW_PAGE_SIZE"`
	DatabasePath string `env:"CSVVIEW_DB"`
	Addr         string `env:"CSVVIEW_ADDR"`
	Theme        string `env:"CSVVIEW_THEME"`
	Debug        *bool  `env:"CSVVIEW_DEBUG"`
	LogLevel     string `env:"CSVVIEW_LOG_LEVEL"`
	Watch        *bool  `env:"CSVVIEW_WATCH"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Table: DefaultTableConfig(),

		Storage: StorageConfig{
			DatabasePath: "csvview.db",
			MaxBytes:     5 << 20,
		},

		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "300ms",
		},

		Server: ServerConfig{
			Addr:      "127.0.0.1:8765",
			MaxUpload: 64 << 20,
		},

		UI: *DefaultUIConfig(),

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultHome returns $CSVVIEW_HOME or ~/.csvview.
func DefaultHome() string {
	if h := os.Getenv("CSVVIEW_HOME"); h != "" {
		return h
	}
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".csvview")
	}
	return ".csvview"
}

// LoadDotEnv loads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load loads configuration from a YAML file in home.
func Load(home string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Home = home

	data, err := os.ReadFile(cfg.Path())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the location of config.yaml.
func (c *Config) Path() string {
	return filepath.Join(c.Home, "config.yaml")
}

// Save saves configuration to config.yaml in Home.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Home, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.Path(), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies CSVVIEW_* environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.PageSize > 0 {
		c.Table.PageSize = o.PageSize
	}
	if o.DatabasePath != "" {
		c.Storage.DatabasePath = o.DatabasePath
	}
	if o.Addr != "" {
		c.Server.Addr = o.Addr
	}
	if o.Theme != "" {
		c.UI.Theme = o.Theme
	}
	if o.Debug != nil {
		c.Logging.DebugMode = *o.Debug
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.Watch != nil {
		c.Watch.Enabled = *o.Watch
	}
	return nil
}

// DatabasePath resolves the storage path against Home.
func (c *Config) DatabasePath() string {
	p := c.Storage.DatabasePath
	if p == "" || p == ":memory:" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Home, p)
}

// GetWatchDebounce returns the watch debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 300 * time.Millisecond
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.ValidateTable(); err != nil {
		return err
	}
	if c.Storage.MaxBytes < 0 {
		return fmt.Errorf("storage.max_bytes must be >= 0")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if err := c.UI.Validate(); err != nil {
		return err
	}
	return nil
}

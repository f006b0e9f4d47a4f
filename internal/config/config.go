// Package config loads settings from defaults, an optional TOML file and
// TABSALVAGE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/lotas/tabsalvage/internal/export"
	"github.com/lotas/tabsalvage/internal/selection"
	"github.com/lotas/tabsalvage/internal/storage"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "TABSALVAGE"

// Config holds all application configuration. Fields carry no envconfig
// defaults so values from the file survive when a variable is unset.
type Config struct {
	Profile           string `toml:"profile" split_words:"true"`
	Format            string `toml:"format" split_words:"true"`
	Overwrite         bool   `toml:"overwrite" split_words:"true"`
	CreateFolder      bool   `toml:"create_folder" split_words:"true"`
	LogDir            string `toml:"log_dir" split_words:"true"`
	LogLevel          string `toml:"log_level" split_words:"true"`
	DBPath            string `toml:"db_path" split_words:"true"`
	MaxRatio          int    `toml:"max_ratio" split_words:"true"`
	SelectionFallback string `toml:"selection_fallback" split_words:"true"`
	DropDuplicates    bool   `toml:"drop_duplicates" split_words:"true"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Format:            export.FormatMarkdown.AsString(),
		LogDir:            dataDir,
		LogLevel:          "info",
		DBPath:            filepath.Join(dataDir, storage.DBFileName),
		MaxRatio:          255,
		SelectionFallback: "open",
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "tabsalvage")
	}
	return filepath.Join(home, ".local", "share", "tabsalvage")
}

// DefaultPath returns the config file location, honouring TABSALVAGE_CONFIG.
func DefaultPath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tabsalvage", "config.toml")
}

// Load builds the configuration. A missing file at path is not an error;
// an empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that can be set from outside.
func (c *Config) Validate() error {
	if _, err := export.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("config format: %w", err)
	}
	if c.MaxRatio < 1 {
		return fmt.Errorf("config max_ratio must be at least 1, got %d", c.MaxRatio)
	}
	if _, err := selection.ParsePolicy(c.SelectionFallback); err != nil {
		return fmt.Errorf("config selection_fallback: %w", err)
	}
	return nil
}

// OutputFormat returns the parsed default export format.
func (c *Config) OutputFormat() export.Format {
	f, _ := export.ParseFormat(c.Format)
	return f
}

// Fallback returns the parsed selection fallback policy.
func (c *Config) Fallback() selection.Policy {
	p, _ := selection.ParsePolicy(c.SelectionFallback)
	return p
}

// Output returns the write options implied by the configuration.
func (c *Config) Output() export.OutputOptions {
	return export.OutputOptions{
		Format:       c.OutputFormat(),
		Overwrite:    c.Overwrite,
		CreateFolder: c.CreateFolder,
	}
}

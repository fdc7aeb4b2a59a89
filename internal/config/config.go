// Package config provides configuration management for Fyora.
//
// Values come from, in increasing precedence: defaults, the config file, and
// environment variables (FYORA_DB_PATH, FYORA_ROOT, FYORA_LOG_LEVEL,
// FYORA_LOG_FORMAT, or FYORA_<SECTION>_<FIELD> for the rest).
//
// Config file locations (priority order):
//  1. $FYORA_CONFIG
//  2. ./fyora.yaml
//  3. $XDG_CONFIG_HOME/fyora/config.yaml
//  4. ~/.config/fyora/config.yaml
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/jinzhu/configor"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides for fields without an explicit env tag
const EnvPrefix = "FYORA"

// Load finds and loads the config file. With no file, defaults and
// environment overrides are still applied. The returned path is empty when
// no file was found.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		cfg, err := load()
		return cfg, "", err
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	if !fileExists(path) {
		return nil, path, fmt.Errorf("read config: %s does not exist", path)
	}

	cfg, err := load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func load(files ...string) (*Config, error) {
	var cfg Config
	loader := configor.New(&configor.Config{ENVPrefix: EnvPrefix, Silent: true})
	if err := loader.Load(&cfg, files...); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		Files: FilesConfig{
			Root:       DefaultRoot,
			ExportDir:  DefaultExportDir,
			SummaryDir: DefaultSummaryDir,
			ImportFile: DefaultImportFile,
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// applyDefaults fills in values left blank after loading, e.g. an explicit
// empty string in the file.
func (c *Config) applyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Files.Root == "" {
		c.Files.Root = DefaultRoot
	}
	if c.Files.ExportDir == "" {
		c.Files.ExportDir = DefaultExportDir
	}
	if c.Files.SummaryDir == "" {
		c.Files.SummaryDir = DefaultSummaryDir
	}
	if c.Files.ImportFile == "" {
		c.Files.ImportFile = DefaultImportFile
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
}

// Validate rejects unknown log settings
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level %q (want debug, info, warn or error)", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log.format %q (want text or json)", c.Log.Format)
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Database: %s\n", c.Database.Path)
	summary += fmt.Sprintf("Root: %s (export: %s, summary: %s, import: %s)\n",
		c.Files.Root, c.Files.ExportDir, c.Files.SummaryDir, c.Files.ImportFile)
	summary += fmt.Sprintf("Log: %s/%s", c.Log.Level, c.Log.Format)
	return summary
}

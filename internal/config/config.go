// Package config handles loading and saving user configuration for
// prettypinyin.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the config file inside the config directory.
const FileName = "config.yaml"

// Config holds all user configuration.
type Config struct {
	Workers     int       `yaml:"workers" mapstructure:"workers"`           // Concurrent line conversions (0 = number of CPUs)
	AnkiField   string    `yaml:"anki_field" mapstructure:"anki_field"`     // Default pinyin field for anki prettify
	Copy        bool      `yaml:"copy" mapstructure:"copy"`                 // Copy results to the clipboard
	NeutralFive bool      `yaml:"neutral_five" mapstructure:"neutral_five"` // numberize writes neutral tone as 5
	Log         LogConfig `yaml:"log" mapstructure:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // pretty or json
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Workers:   0,
		AnkiField: "Pinyin",
		Log: LogConfig{
			Level:  "info",
			Format: "pretty",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults; keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be corrected silently.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	switch c.Log.Format {
	case "", "pretty", "json":
	default:
		return fmt.Errorf("unknown log format: %s", c.Log.Format)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.Log.Level)
	}
	return nil
}

// Save writes configuration to a YAML file, creating its directory.
func Save(path string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "prettypinyin"), nil
}

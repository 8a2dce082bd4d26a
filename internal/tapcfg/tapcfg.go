// Package tapcfg loads the optional project configuration for the tapcat
// CLI, layering a `.tapcat.yaml` file over built-in defaults.
package tapcfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds tapcat's project-level settings.
type Config struct {
	Color  ColorConfig  `mapstructure:"color"`
	Watch  WatchConfig  `mapstructure:"watch"`
	Strict bool         `mapstructure:"strict"`
}

// ColorConfig controls terminal rendering.
type ColorConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	ShowDiag   bool `mapstructure:"show_diag"`
}

// WatchConfig controls `tapcat watch`'s debounce delay.
type WatchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"`
}

// Load reads `<dir>/.tapcat.yaml` if present, and returns defaults
// otherwise. A missing file is not an error.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ".tapcat.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("tapcfg: reading %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("tapcfg: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultConfig returns tapcat's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Color: ColorConfig{
			Enabled:  true,
			ShowDiag: true,
		},
		Watch: WatchConfig{
			DebounceMS: 150,
		},
	}
}

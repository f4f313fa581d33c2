// Package config provides configuration loading for pkgman.
//
// Values come from, in increasing priority: built-in defaults, the config
// file ({Dir}/config.yaml or --config), PKGMAN_* environment variables and
// command-line flags bound by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Output formats accepted by the format key.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
)

// Config holds runtime configuration for the CLI. The pkgutil path and the
// Apple package prefix are fixed and not configurable.
type Config struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Verbose     bool          `mapstructure:"verbose"`
	Color       bool          `mapstructure:"color"`
	Format      string        `mapstructure:"format"`
	ReceiptsDir string        `mapstructure:"receipts_dir"`
}

// Dir returns the pkgman config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/pkgman if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "pkgman"), nil
}

// Setup points viper at the config file and environment. An explicit
// cfgFile must exist; the default config file is optional.
func Setup(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if dir, err := Dir(); err == nil {
			viper.AddConfigPath(dir)
		}
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PKGMAN")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("timeout", 30*time.Second)
	viper.SetDefault("verbose", false)
	viper.SetDefault("color", true)
	viper.SetDefault("format", FormatTable)
	viper.SetDefault("receipts_dir", "/var/db/receipts")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that viper cannot express.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}
	switch c.Format {
	case FormatTable, FormatYAML, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q: want table, yaml or json", c.Format)
	}
	if c.ReceiptsDir == "" {
		return errors.New("receipts_dir cannot be empty")
	}
	return nil
}

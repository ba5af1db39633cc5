// Package config loads CLI settings from an optional YAML file, a .env file
// and VARIANTS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/roach88/variants/internal/variant"
)

// EnvPrefix prefixes every environment override, e.g. VARIANTS_LOG_LEVEL.
const EnvPrefix = "VARIANTS"

// Config is the full CLI configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Barcode  BarcodeConfig  `mapstructure:"barcode"`
	Generate GenerateConfig `mapstructure:"generate"`
	Output   OutputConfig   `mapstructure:"output"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level    string `mapstructure:"level"`    // debug, info, warn, error
	Encoding string `mapstructure:"encoding"` // console or json
}

// BarcodeConfig controls synthesized barcodes.
type BarcodeConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// GenerateConfig bounds combination generation.
type GenerateConfig struct {
	MaxCombinations int `mapstructure:"max_combinations"` // 0 disables the limit
}

// OutputConfig sets the default output format.
type OutputConfig struct {
	Format string `mapstructure:"format"` // text or json
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info", Encoding: "console"},
		Barcode:  BarcodeConfig{Prefix: variant.DefaultBarcodePrefix},
		Generate: GenerateConfig{MaxCombinations: 10000},
		Output:   OutputConfig{Format: "text"},
	}
}

// Load reads configuration. An empty path skips the config file; a .env in
// the working directory is loaded when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("barcode.prefix", d.Barcode.Prefix)
	v.SetDefault("generate.max_combinations", d.Generate.MaxCombinations)
	v.SetDefault("output.format", d.Output.Format)
}

// Validate rejects values the CLI cannot act on.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}
	switch c.Log.Encoding {
	case "console", "json":
	default:
		return fmt.Errorf("log.encoding must be console or json (got %q)", c.Log.Encoding)
	}
	if err := variant.ValidateBarcodePrefix(c.Barcode.Prefix); err != nil {
		return fmt.Errorf("barcode.prefix: %w", err)
	}
	if c.Generate.MaxCombinations < 0 {
		return fmt.Errorf("generate.max_combinations must not be negative (got %d)", c.Generate.MaxCombinations)
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json (got %q)", c.Output.Format)
	}
	return nil
}

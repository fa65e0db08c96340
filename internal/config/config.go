// Package config loads analyzer configuration from file and environment.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds analyzer settings loadable from drape-meter.yaml or
// DRAPE_* environment variables.
type Config struct {
	// Physical constants, centimeters.
	ReferenceDiameterCm float64 `mapstructure:"reference_diameter_cm"`
	DiskDiameterCm      float64 `mapstructure:"disk_diameter_cm"`
	FabricDiameterCm    float64 `mapstructure:"fabric_diameter_cm"`
	SquareSideCm        float64 `mapstructure:"square_side_cm"`

	// History persistence.
	HistoryPath     string `mapstructure:"history_path"`
	HistoryCapacity int    `mapstructure:"history_capacity"`

	// Captures larger than this on either axis are downscaled before
	// analysis. 0 disables scaling.
	MaxImageDim int `mapstructure:"max_image_dim"`

	// Logging: debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

// Load reads drape-meter.yaml from the working directory or $HOME, applies
// DRAPE_* environment overrides and returns the merged configuration.
// A missing config file is not an error; defaults apply.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("drape-meter")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME")
	v.SetEnvPrefix("DRAPE")
	v.AutomaticEnv()

	v.SetDefault("reference_diameter_cm", 2.5)
	v.SetDefault("disk_diameter_cm", 18.0)
	v.SetDefault("fabric_diameter_cm", 30.0)
	v.SetDefault("square_side_cm", 5.0)
	v.SetDefault("history_path", "drape-history.json")
	v.SetDefault("history_capacity", 20)
	v.SetDefault("max_image_dim", 2048)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

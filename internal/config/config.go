// Package config loads holdjudge settings from an optional YAML file and
// HOLDJUDGE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the working directory when no
// explicit path is given.
const FileName = "holdjudge"

// Config holds settings shared by every command.
type Config struct {
	// DB is the SQLite database for recorded sessions.
	DB string `mapstructure:"db"`

	// FrameStep is the scenario sampling interval in milliseconds.
	FrameStep float64 `mapstructure:"frame_step"`

	Format    string `mapstructure:"format"`
	LogLevel  string `mapstructure:"log_level"`
	Metrics   bool   `mapstructure:"metrics"`
	HitPolicy string `mapstructure:"hit_policy"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "holdjudge.db")
	v.SetDefault("frame_step", 10.0)
	v.SetDefault("format", "text")
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics", false)
	v.SetDefault("hit_policy", "cursor")
}

// Load reads configuration. An empty path looks for holdjudge.yaml in the
// working directory and carries on with defaults if there is none; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HOLDJUDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks values that the commands cannot recover from.
func (c *Config) Validate() error {
	if !(c.FrameStep > 0) {
		return fmt.Errorf("frame_step must be positive, got %v", c.FrameStep)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", c.Format)
	}
	switch c.HitPolicy {
	case "cursor", "any":
	default:
		return fmt.Errorf("hit_policy must be cursor or any, got %q", c.HitPolicy)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

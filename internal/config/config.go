// Package config reads server settings from an optional YAML file plus
// GATEWATCH_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully resolved server configuration.
type Config struct {
	Addr              string        `mapstructure:"addr"`
	TickRate          int           `mapstructure:"tickRate"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeatInterval"`
	HeartbeatMisses   int           `mapstructure:"heartbeatMisses"`
	CommandCapacity   int           `mapstructure:"commandCapacity"`
	LevelPath         string        `mapstructure:"levelPath"`
	Log               LogConfig     `mapstructure:"log"`
}

// HeartbeatTimeout is how long a subscriber may stay silent before it is
// pruned: the heartbeat interval times the allowed number of misses.
func (c Config) HeartbeatTimeout() time.Duration {
	return c.HeartbeatInterval * time.Duration(c.HeartbeatMisses)
}

// LogConfig controls zerolog output and the event router's sinks.
type LogConfig struct {
	Level    string   `mapstructure:"level"`
	Sinks    []string `mapstructure:"sinks"`
	JSONPath string   `mapstructure:"jsonPath"`
	Color    bool     `mapstructure:"color"`
}

// Default returns the shipped configuration.
func Default() Config {
	cfg, _ := Load("")
	return cfg
}

// Load resolves configuration in precedence order: defaults, then the given
// file (optional when path is empty), then environment variables with the
// GATEWATCH_ prefix (GATEWATCH_TICKRATE, GATEWATCH_LOG_LEVEL, ...).
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("tickRate", 15)
	v.SetDefault("heartbeatInterval", 2*time.Second)
	v.SetDefault("heartbeatMisses", 3)
	v.SetDefault("commandCapacity", 256)
	v.SetDefault("levelPath", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.sinks", []string{"console"})
	v.SetDefault("log.jsonPath", "")
	v.SetDefault("log.color", true)

	v.SetEnvPrefix("GATEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tickRate must be positive, got %d", c.TickRate)
	}
	if c.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeatInterval must be positive, got %v", c.HeartbeatInterval)
	}
	if c.HeartbeatMisses <= 0 {
		return fmt.Errorf("heartbeatMisses must be positive, got %d", c.HeartbeatMisses)
	}
	if c.CommandCapacity <= 0 {
		return fmt.Errorf("commandCapacity must be positive, got %d", c.CommandCapacity)
	}
	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	for _, sink := range c.Log.Sinks {
		switch sink {
		case "console", "json", "memory":
		default:
			return fmt.Errorf("unknown log sink %q", sink)
		}
	}
	return nil
}

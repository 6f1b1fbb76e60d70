// Package config loads calculator settings from a file and the environment.
//
// Every key can be overridden by an environment variable named CALC_ followed
// by the key in upper case with dots replaced by underscores, e.g.
// CALC_HISTORY_BACKEND.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override configuration.
const EnvPrefix = "CALC"

// Config is the complete calculator configuration.
type Config struct {
	History   *History
	Functions *Functions
	Log       *Log
	Telemetry *Telemetry
	Viper     *viper.Viper
}

// Load reads configuration from the file at path. When path is empty, a file
// named calc.yaml, calc.yml, or calc.json is searched for in the working
// directory and in $HOME/.calc, and it is not an error for none to exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("calc")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.calc")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{
		History:   getHistoryConfig(v),
		Functions: getFunctionsConfig(v),
		Log:       getLogConfig(v),
		Telemetry: getTelemetryConfig(v),
		Viper:     v,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.History.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("invalid history backend %q: must be json or sqlite", c.History.Backend)
	}
	if c.History.Path == "" {
		return errors.New("history path must not be empty")
	}
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("invalid history max_entries %d: must not be negative", c.History.MaxEntries)
	}
	if c.Functions.Path == "" {
		return errors.New("functions path must not be empty")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.Log.Format)
	}
	return nil
}

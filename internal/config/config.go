package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. REPLAY_LOG_LEVEL.
const EnvPrefix = "REPLAY"

// Config holds replay settings.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// ProgressInterval logs progress every N operations (0 = off).
	ProgressInterval uint64 `mapstructure:"progress_interval"`

	// StrictLength rejects trace files shorter than their header declares
	// before replay starts.
	StrictLength bool `mapstructure:"strict_length"`
}

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error in field '%s': %s", e.Field, e.Message)
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "info",
		ProgressInterval: 0,
		StrictLength:     true,
	}
}

// Validate checks the configuration and normalizes the log level.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("unknown level %q (want debug, info, warn or error)", c.LogLevel),
		}
	}
	return nil
}

// SetDefaults registers DefaultConfig values and environment binding on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("progress_interval", d.ProgressInterval)
	v.SetDefault("strict_length", d.StrictLength)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads the optional config file into v and decodes the result. An
// empty file path skips the file; a named file that cannot be read is an
// error.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

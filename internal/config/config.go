// Package config provides configuration loading for the anvil CLI: a YAML
// config file under the anvil home directory with ANVIL_* environment
// overrides.
package config

// Config is the CLI configuration.
type Config struct {
	// SearchPaths lists artifact files or directories assembled by default
	// when a command is given no paths.
	SearchPaths []string `mapstructure:"searchPaths"`

	// Log configures logging behavior.
	Log LogConfig `mapstructure:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Verbose enables debug-level logging.
	Verbose bool `mapstructure:"verbose"`
}

// WithDefaults returns a copy with defaults applied.
func (c *Config) WithDefaults() *Config {
	out := *c
	return &out
}

// Package config holds the buildscope configuration and its YAML loader.
package config

// Config holds all configuration for the application. Values are loaded from
// an optional YAML file and overridden by command-line flags.
type Config struct {
	// BazelBinary is the query engine binary to invoke.
	BazelBinary string `yaml:"bazel_binary"`

	// Universe is the scope for reverse-dependency searches.
	Universe string `yaml:"universe"`

	// RdepsDepth bounds the reverse-dependency hop count when resolving
	// affected targets. Depth 1 (owners plus immediate dependents) is the
	// precision/recall trade-off the selection was designed around; raise it
	// only on graphs where query cost allows.
	RdepsDepth int `yaml:"rdeps_depth"`

	// SlowThresholdMs is the default slow-action reporting threshold.
	SlowThresholdMs int64 `yaml:"slow_threshold_ms"`

	// Workers bounds concurrent changed-file owner lookups.
	Workers int `yaml:"workers"`

	// BaseRef is the default git diff base for the select command.
	BaseRef string `yaml:"base_ref"`

	// ListenAddr is the metrics listen address for watch mode.
	ListenAddr string `yaml:"listen_addr"`

	// TestSubstrings and TestSuffixes configure the test-target naming
	// predicate. Empty lists keep the built-in convention
	// (label contains "_test" or ends with "_tests").
	TestSubstrings []string `yaml:"test_substrings"`
	TestSuffixes   []string `yaml:"test_suffixes"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		BazelBinary:     "bazel",
		Universe:        "//...",
		RdepsDepth:      1,
		SlowThresholdMs: 1000,
		Workers:         4,
		BaseRef:         "main",
		ListenAddr:      ":9090",
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.BazelBinary == "" {
		return NewConfigError("bazel_binary must not be empty")
	}

	if c.Universe == "" {
		return NewConfigError("universe must not be empty")
	}

	if c.RdepsDepth < 1 {
		return NewConfigError("rdeps_depth must be at least 1")
	}

	if c.SlowThresholdMs < 0 {
		return NewConfigError("slow_threshold_ms must not be negative")
	}

	if c.Workers < 1 {
		return NewConfigError("workers must be at least 1")
	}

	if c.ListenAddr == "" {
		return NewConfigError("listen_addr must not be empty")
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}

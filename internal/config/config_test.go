package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty bazel binary",
			mutate:  func(c *Config) { c.BazelBinary = "" },
			wantErr: "bazel_binary",
		},
		{
			name:    "empty universe",
			mutate:  func(c *Config) { c.Universe = "" },
			wantErr: "universe",
		},
		{
			name:    "zero rdeps depth",
			mutate:  func(c *Config) { c.RdepsDepth = 0 },
			wantErr: "rdeps_depth",
		},
		{
			name:    "negative threshold",
			mutate:  func(c *Config) { c.SlowThresholdMs = -1 },
			wantErr: "slow_threshold_ms",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: "workers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildscope.yaml")
	content := `
bazel_binary: /usr/local/bin/bazel
universe: "//services/..."
rdeps_depth: 2
test_suffixes: ["_it"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/bazel", cfg.BazelBinary)
	assert.Equal(t, "//services/...", cfg.Universe)
	assert.Equal(t, 2, cfg.RdepsDepth)
	assert.Equal(t, []string{"_it"}, cfg.TestSuffixes)

	// Unset keys keep their defaults.
	assert.Equal(t, int64(1000), cfg.SlowThresholdMs)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_NoDefaultFileFallsBackToDefaults(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { require.NoError(t, os.Chdir(cwd)) }()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rdeps_depth: 0\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

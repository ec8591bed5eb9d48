package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel LogLevel
	}{
		{name: "debug level", level: "debug", wantLevel: DEBUG},
		{name: "info level", level: "info", wantLevel: INFO},
		{name: "warn level", level: "warn", wantLevel: WARN},
		{name: "error level", level: "error", wantLevel: ERROR},
		{name: "uppercase accepted", level: "DEBUG", wantLevel: DEBUG},
		{name: "unknown falls back to info", level: "bogus", wantLevel: INFO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Initialize(tt.level))
			assert.Equal(t, tt.wantLevel, globalLogger.level)
		})
	}
}

func TestSetPackageLogLevels(t *testing.T) {
	require.NoError(t, SetPackageLogLevels(map[string]string{
		"bazel":    "debug",
		"impact.*": "warn",
	}))
	defer func() {
		require.NoError(t, SetPackageLogLevels(map[string]string{}))
	}()

	assert.Equal(t, DEBUG, GetPackageLogLevel("bazel"))
	assert.Equal(t, WARN, GetPackageLogLevel("impact.resolver"))
	assert.Equal(t, LogLevel(-1), GetPackageLogLevel("watcher"))
}

func TestSetPackageLogLevels_InvalidLevel(t *testing.T) {
	err := SetPackageLogLevels(map[string]string{"bazel": "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid level")
}

func TestWildcardSpecificity(t *testing.T) {
	require.NoError(t, SetPackageLogLevels(map[string]string{
		"impact.*":          "warn",
		"impact.resolver.*": "debug",
	}))
	defer func() {
		require.NoError(t, SetPackageLogLevels(map[string]string{}))
	}()

	// The longer (more specific) pattern wins.
	assert.Equal(t, DEBUG, GetPackageLogLevel("impact.resolver.owners"))
	assert.Equal(t, WARN, GetPackageLogLevel("impact.deps"))
}

func TestWithFieldImmutability(t *testing.T) {
	require.NoError(t, Initialize("info"))
	base := GetLogger("test")
	derived := base.WithField("run_id", "abc123")

	assert.Empty(t, base.fields)
	assert.Equal(t, "abc123", derived.fields["run_id"])

	// Deriving again must not mutate the intermediate logger.
	derived2 := derived.WithFields(Field("targets", 3))
	assert.NotContains(t, derived.fields, "targets")
	assert.Equal(t, 3, derived2.fields["targets"])
}

func TestShouldLog(t *testing.T) {
	require.NoError(t, Initialize("warn"))
	logger := GetLogger("test")

	assert.False(t, logger.shouldLog(DEBUG))
	assert.False(t, logger.shouldLog(INFO))
	assert.True(t, logger.shouldLog(WARN))
	assert.True(t, logger.shouldLog(ERROR))
}

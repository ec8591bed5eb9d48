package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/moolen/buildscope/internal/config"
	"github.com/moolen/buildscope/internal/logging"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var (
	logLevelFlags []string // Supports multiple --log-level flags
	configPath    string
)

var rootCmd = &cobra.Command{
	Use:   "buildscope",
	Short: "Buildscope - Bazel build analysis and change-impact test selection",
	Long: `Buildscope analyzes Bazel Build Event Protocol logs into metrics and
failure reports, and computes which test targets must run after a set of
source files changes, by querying the dependency graph for file owners and
their reverse dependents.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all subcommands
	// Supports per-component log levels: --log-level debug --log-level bazel=debug
	rootCmd.PersistentFlags().StringSliceVar(&logLevelFlags, "log-level",
		[]string{"info"},
		"Log level for components. Use 'default=level' for default, or 'component=level' per component.\n"+
			"Examples: --log-level debug (all), --log-level bazel=debug --log-level impact.*=warn")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to the buildscope config file (default: ./"+config.DefaultConfigFile+" if present)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(watchCmd)
}

// HandleError prints error and exits
func HandleError(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration file referenced by --config (or the
// default location) and fails the process on error.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		HandleError(err, "Configuration error")
	}
	return cfg
}

// setupLog initializes the logging system with parsed log level flags
func setupLog(flags []string) error {
	defaultLevel, packageLevels, err := parseLogLevelFlags(flags)
	if err != nil {
		return err
	}
	return logging.Initialize(defaultLevel, packageLevels)
}

// parseLogLevelFlags parses CLI flags and environment variables.
// Priority: CLI flags > Environment variables.
//
// CLI format: ["debug"], ["default=info", "bazel=debug"], or ["info"]
// Env vars: LOG_LEVEL_IMPACT_RESOLVER=debug (component uppercased, dots to underscores)
//
// Returns: (defaultLevel, packageLevels map, error)
func parseLogLevelFlags(flags []string) (string, map[string]string, error) {
	result := make(map[string]string)

	// Environment variables first (lower priority).
	for _, envPair := range os.Environ() {
		if strings.HasPrefix(envPair, "LOG_LEVEL_") {
			parts := strings.SplitN(envPair, "=", 2)
			if len(parts) != 2 {
				continue
			}
			result[convertEnvKeyToPackageName(parts[0])] = parts[1]
		}
	}

	// CLI flags override env vars.
	for _, flag := range flags {
		if !strings.Contains(flag, "=") {
			// Bare level like "debug" sets the default.
			result["default"] = flag
		} else {
			parts := strings.SplitN(flag, "=", 2)
			if len(parts) == 2 {
				result[parts[0]] = parts[1]
			}
		}
	}

	defaultLevel := "info"
	if level, exists := result["default"]; exists {
		defaultLevel = level
		delete(result, "default")
	}

	if err := validateLogLevel(defaultLevel); err != nil {
		return "", nil, err
	}
	for pkg, level := range result {
		if err := validateLogLevel(level); err != nil {
			return "", nil, fmt.Errorf("invalid log level for component %q: %v", pkg, err)
		}
	}

	return defaultLevel, result, nil
}

// convertEnvKeyToPackageName converts LOG_LEVEL_IMPACT_RESOLVER -> impact.resolver
func convertEnvKeyToPackageName(envKey string) string {
	name := strings.TrimPrefix(envKey, "LOG_LEVEL_")
	return strings.ToLower(strings.ReplaceAll(name, "_", "."))
}

// validateLogLevel checks if a level string is valid
func validateLogLevel(level string) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLevels[strings.ToLower(level)] {
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, error, or fatal)", level)
	}
	return nil
}

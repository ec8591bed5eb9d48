package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/moolen/buildscope/internal/bazel"
	"github.com/moolen/buildscope/internal/impact"
	"github.com/moolen/buildscope/internal/logging"
	"github.com/moolen/buildscope/internal/vcs"
	"github.com/spf13/cobra"
)

var (
	selectFiles    string
	selectBaseRef  string
	selectUniverse string
	selectDepth    int
	selectWorkers  int
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select the test targets affected by changed files",
	Long: `Compute which test targets must run for a set of changed files: for each
file, find its owning targets and their reverse dependents, then filter the
affected set down to test targets by naming convention.

Changed files come from 'git diff --name-only <base>...HEAD' by default, or
from an explicit --files list. Files not tracked by the build graph are
skipped. An empty selection is a normal outcome: no tests need to run.`,
	Run: runSelect,
}

func init() {
	selectCmd.Flags().StringVar(&selectFiles, "files", "",
		"Comma-separated list of changed files (default: git diff against --base)")
	selectCmd.Flags().StringVar(&selectBaseRef, "base", "", "Base git ref for the diff (default: from config)")
	selectCmd.Flags().StringVar(&selectUniverse, "universe", "", "Universe scope for rdeps queries (default: from config)")
	selectCmd.Flags().IntVar(&selectDepth, "depth", 0, "Reverse-dependency hop depth (default: from config)")
	selectCmd.Flags().IntVar(&selectWorkers, "workers", 0, "Concurrent changed-file lookups (default: from config)")
}

func runSelect(cmd *cobra.Command, args []string) {
	HandleError(setupLog(logLevelFlags), "Logging setup error")
	cfg := loadConfig()

	if selectUniverse != "" {
		cfg.Universe = selectUniverse
	}
	if selectDepth > 0 {
		cfg.RdepsDepth = selectDepth
	}
	if selectWorkers > 0 {
		cfg.Workers = selectWorkers
	}
	if selectBaseRef != "" {
		cfg.BaseRef = selectBaseRef
	}

	ctx := context.Background()
	logger := logging.GetLogger("cli.select").WithField("run_id", uuid.NewString())

	client := bazel.NewClient(cfg.BazelBinary)
	if err := client.CheckVersion(ctx); err != nil {
		// An old or unprobeable bazel is worth a warning, not an abort: the
		// queries below surface real engine failures on their own.
		logger.Warn("bazel version check failed: %v", err)
	}

	changedFiles, err := gatherChangedFiles(ctx, cfg.BaseRef)
	HandleError(err, "Failed to determine changed files")

	if len(changedFiles) == 0 {
		fmt.Println("No changed files detected")
		return
	}
	logger.InfoWithFields("analyzing changed files",
		logging.Field("files", len(changedFiles)),
		logging.Field("base", cfg.BaseRef),
	)

	resolver := impact.NewResolver(client, impact.Options{
		Universe:   cfg.Universe,
		RdepsDepth: cfg.RdepsDepth,
		Workers:    cfg.Workers,
		Matcher:    impact.MatcherFromPatterns(cfg.TestSubstrings, cfg.TestSuffixes),
	})

	affected, err := resolver.ResolveAffected(ctx, changedFiles)
	HandleError(err, "Failed to resolve affected targets")

	tests := resolver.FindTestTargets(affected)
	if len(tests) == 0 {
		fmt.Println("No tests need to be run!")
		return
	}

	fmt.Printf("Affected test targets (%d):\n", len(tests))
	for _, label := range tests {
		fmt.Printf("  %s\n", label)
	}
	fmt.Println("\nRun command:")
	fmt.Printf("  %s\n", impact.TestCommand(cfg.BazelBinary, tests))
}

// gatherChangedFiles returns the explicit --files list when given, otherwise
// the git diff against the base ref.
func gatherChangedFiles(ctx context.Context, baseRef string) ([]string, error) {
	if selectFiles != "" {
		return vcs.SplitFileList(selectFiles), nil
	}
	return vcs.NewGitClient().ChangedFiles(ctx, baseRef)
}

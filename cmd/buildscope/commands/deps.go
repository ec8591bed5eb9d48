package commands

import (
	"context"
	"fmt"

	"github.com/moolen/buildscope/internal/bazel"
	"github.com/moolen/buildscope/internal/impact"
	"github.com/spf13/cobra"
)

var depsFormat string

var depsCmd = &cobra.Command{
	Use:   "deps <target>",
	Short: "Analyze the dependency tree of a target",
	Long: `Report the size of a target's dependency tree: the transitive dependency
count, the direct dependency count, and a depth approximation.

Note that max_depth mirrors the transitive dependency count rather than a
true longest-path depth; existing consumers depend on that behavior.`,
	Args: cobra.ExactArgs(1),
	Run:  runDeps,
}

func init() {
	depsCmd.Flags().StringVar(&depsFormat, "format", "text", "Output format: text, json or yaml")
}

func runDeps(cmd *cobra.Command, args []string) {
	HandleError(setupLog(logLevelFlags), "Logging setup error")
	cfg := loadConfig()

	target := args[0]
	client := bazel.NewClient(cfg.BazelBinary)
	resolver := impact.NewResolver(client, impact.Options{
		Universe:   cfg.Universe,
		RdepsDepth: cfg.RdepsDepth,
		Workers:    cfg.Workers,
	})

	report, err := resolver.AnalyzeDependencies(context.Background(), target)
	HandleError(err, "Failed to analyze dependencies")

	switch depsFormat {
	case "text":
		fmt.Printf("Target:              %s\n", report.Target)
		fmt.Printf("Total dependencies:  %d\n", report.TotalDependencies)
		fmt.Printf("Direct dependencies: %d\n", report.DirectDependencies)
		fmt.Printf("Max depth (approx):  %d\n", report.MaxDepth)
	default:
		HandleError(renderStructured(depsFormat, report), "Failed to render report")
	}
}

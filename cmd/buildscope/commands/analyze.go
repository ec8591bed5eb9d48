package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/moolen/buildscope/internal/bep"
	"github.com/moolen/buildscope/internal/logging"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	analyzeBEPPath   string
	analyzeThreshold int64
	analyzeFormat    string
)

// AnalysisReport is the analyze command's result surface
type AnalysisReport struct {
	Metrics       bep.BuildMetrics `json:"metrics"`
	FailedTargets []string         `json:"failed_targets"`
	SlowActions   []bep.SlowAction `json:"slow_actions"`
	SkippedLines  int              `json:"skipped_lines"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract metrics, failures and slow actions from a build-event log",
	Long: `Analyze a Build Event Protocol log (newline-delimited JSON) and report
aggregate build metrics, the targets that failed, and the actions whose
execution time exceeded the slow-action threshold, slowest first.`,
	Run: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeBEPPath, "bep", "", "Path to the build-event log (required)")
	analyzeCmd.Flags().Int64Var(&analyzeThreshold, "threshold", -1,
		"Slow-action threshold in milliseconds (default: from config)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "Output format: text, json or yaml")
	_ = analyzeCmd.MarkFlagRequired("bep")
}

func runAnalyze(cmd *cobra.Command, args []string) {
	HandleError(setupLog(logLevelFlags), "Logging setup error")
	cfg := loadConfig()

	threshold := cfg.SlowThresholdMs
	if analyzeThreshold >= 0 {
		threshold = analyzeThreshold
	}

	logger := logging.GetLogger("cli.analyze").WithField("run_id", uuid.NewString())
	logger.Debug("analyzing %s with threshold %dms", analyzeBEPPath, threshold)

	analyzer, err := bep.LoadFile(analyzeBEPPath)
	HandleError(err, "Failed to read build-event log")

	report := AnalysisReport{
		Metrics:       analyzer.ExtractMetrics(),
		FailedTargets: analyzer.FailedTargets(),
		SlowActions:   analyzer.SlowActions(threshold),
		SkippedLines:  analyzer.SkippedLines(),
	}

	if report.SkippedLines > 0 {
		logger.Warn("skipped %d malformed event lines", report.SkippedLines)
	}

	switch analyzeFormat {
	case "text":
		printAnalysisReport(report, threshold)
	default:
		HandleError(renderStructured(analyzeFormat, report), "Failed to render report")
	}
}

func printAnalysisReport(report AnalysisReport, threshold int64) {
	m := report.Metrics
	fmt.Printf("Targets:            %d total, %d successful, %d failed\n",
		m.TotalTargets, m.SuccessfulTargets, m.FailedTargets)
	fmt.Printf("Actions:            %d (%d cache hits, %d remote cache hits)\n",
		m.ActionCount, m.CacheHits, m.RemoteCacheHits)
	fmt.Printf("Wall time:          %dms\n", m.TotalTimeMs)
	if report.SkippedLines > 0 {
		fmt.Printf("Skipped lines:      %d\n", report.SkippedLines)
	}

	if len(report.FailedTargets) > 0 {
		fmt.Println("\nFailed targets:")
		for _, label := range report.FailedTargets {
			fmt.Printf("  %s\n", label)
		}
	}

	if len(report.SlowActions) > 0 {
		fmt.Printf("\nActions slower than %dms:\n", threshold)
		for _, action := range report.SlowActions {
			fmt.Printf("  %6dms  %-12s %s\n", action.DurationMs, action.Mnemonic, action.Target)
		}
	}
}

// renderStructured writes the report as JSON or YAML to stdout
func renderStructured(format string, report interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(report)
	default:
		return fmt.Errorf("unknown output format %q (must be text, json or yaml)", format)
	}
}

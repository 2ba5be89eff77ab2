package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gh-nvat/jitdiff/src/internal/runner"
	"github.com/gh-nvat/jitdiff/src/pkg/analyze"
	"github.com/gh-nvat/jitdiff/src/pkg/config"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

type options struct {
	// Run mode
	runMode string // "github" or "local"

	// Inputs
	mainDir      string
	prDir        string
	summaryFile  string
	analyzeBin   string
	analyzeCount int

	// Common options
	configPath      string
	templatesPath   string
	annotationsPath string

	// Inclusion policy
	includeKnownNoise bool
	includeRemoved    bool
	includeNew        bool

	// Limits
	maxMethods     int
	maxReportBytes int
	concurrency    int
	timeout        time.Duration

	// Diff collaborator
	diffBin          string
	diffContextLines int

	// GitHub mode options
	ghRepo     string
	ghPrNumber int

	// Output options
	outputDir          string
	enableTrace        bool
	enableExportReport bool
	logLevel           string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "jitdiff",
		Short: "JIT codegen diff reporter for pull requests",
		Long: `jitdiff compares JIT disassembly dumps of a baseline and a candidate build.
It picks the top regressed and improved methods from a jit-analyze summary, extracts and diffs
their disassembly, hides known nondeterministic noise, and posts a size-bounded report on the PR.`,
		Version:      fmt.Sprintf("%s (built: %s)", Version, BuildTime),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.Flags().Changed)
		},
	}

	// Run mode
	cmd.Flags().StringVar(&opts.runMode, "run-mode", runner.RUN_MODE_LOCAL, "Run mode: github or local")

	// Inputs
	cmd.Flags().StringVar(&opts.mainDir, "main-dir", "", "Directory with the baseline dump files (required)")
	cmd.Flags().StringVar(&opts.prDir, "pr-dir", "", "Directory with the candidate dump files (required)")
	cmd.Flags().StringVar(&opts.summaryFile, "summary-file", "", "Pre-computed jit-analyze summary; runs --analyze-bin when empty")
	cmd.Flags().StringVar(&opts.analyzeBin, "analyze-bin", analyze.DEFAULT_ANALYZE_BIN, "jit-analyze compatible binary")
	cmd.Flags().IntVar(&opts.analyzeCount, "analyze-count", runner.DEFAULT_ANALYZE_COUNT, "Number of methods jit-analyze lists per section")

	// Common flags
	cmd.Flags().StringVar(&opts.configPath, "config", "", fmt.Sprintf("Path to config file (default ./%s when present)", config.DEFAULT_CONFIG_FILE))
	cmd.Flags().StringVar(&opts.templatesPath, "templates-path", runner.DEFAULT_TEMPLATES_PATH, "Path to templates directory")
	cmd.Flags().StringVar(&opts.annotationsPath, "annotations", "", "YAML file with per-method notes")

	// Inclusion policy
	cmd.Flags().BoolVar(&opts.includeKnownNoise, "include-known-noise", false, "Show methods whose diffs contain known noise")
	cmd.Flags().BoolVar(&opts.includeRemoved, "include-removed", false, "Show methods removed in the candidate")
	cmd.Flags().BoolVar(&opts.includeNew, "include-new", false, "Show methods new in the candidate")

	// Limits
	cmd.Flags().IntVar(&opts.maxMethods, "max-methods", config.DEFAULT_MAX_METHODS, "Maximum methods shown per section")
	cmd.Flags().IntVar(&opts.maxReportBytes, "max-report-bytes", config.DEFAULT_MAX_REPORT_BYTES, "Byte budget for the report")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Methods processed at once (default: CPU count)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Minute, "Overall deadline, 0 disables it")

	// Diff collaborator
	cmd.Flags().StringVar(&opts.diffBin, "diff-bin", "", "External diff binary; the in-process differ is used when empty")
	cmd.Flags().IntVar(&opts.diffContextLines, "diff-context", 0, "Context lines around changes (default: whole method)")

	// GitHub mode flags
	cmd.Flags().StringVar(&opts.ghRepo, "gh-repo", "", "GitHub repository (e.g., org/repo) [github mode]")
	cmd.Flags().IntVar(&opts.ghPrNumber, "gh-pr-number", 0, "GitHub PR number [github mode]")

	// Output flags
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "./output", "Output directory for reports, metrics and traces")
	cmd.Flags().BoolVar(&opts.enableTrace, "enable-trace", false, "Write performance-report.json to the output directory")
	cmd.Flags().BoolVar(&opts.enableExportReport, "enable-export-report", false, "Write report.json and metrics.prom to the output directory")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warning", "Log level: debug, info, warning, error")

	// Mark required flags
	_ = cmd.MarkFlagRequired("main-dir")
	_ = cmd.MarkFlagRequired("pr-dir")

	return cmd
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gh-nvat/jitdiff/src/internal/runner"
	"github.com/gh-nvat/jitdiff/src/pkg/analyze"
	"github.com/gh-nvat/jitdiff/src/pkg/annotate"
	"github.com/gh-nvat/jitdiff/src/pkg/assembler"
	"github.com/gh-nvat/jitdiff/src/pkg/config"
	"github.com/gh-nvat/jitdiff/src/pkg/diff"
	"github.com/gh-nvat/jitdiff/src/pkg/github"
	"github.com/gh-nvat/jitdiff/src/pkg/metrics"
	"github.com/gh-nvat/jitdiff/src/pkg/noise"
	"github.com/gh-nvat/jitdiff/src/pkg/summary"
	"github.com/gh-nvat/jitdiff/src/pkg/template"
	"github.com/gh-nvat/jitdiff/src/pkg/trace"
	log "github.com/sirupsen/logrus"
)

func run(ctx context.Context, opts *options, changed func(string) bool) error {
	level, err := log.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)

	// Load configuration, flags set on the command line win
	fmt.Println("📋 Loading configuration...")
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	runOpts := buildRunnerOptions(opts, cfg, changed)

	if err := validateOptions(runOpts); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	fmt.Printf("✅ Comparing %s against %s (mode: %s)\n\n", runOpts.PrDir, runOpts.MainDir, runOpts.RunMode)

	if runOpts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, runOpts.Timeout)
		defer cancel()
	}

	// Initialize components
	parser := summary.NewParser()
	var analyzer analyze.SummaryAnalyzer
	if runOpts.SummaryFile == "" {
		analyzer = analyze.NewAnalyzer(runOpts.AnalyzeBin)
	}

	var differ diff.LineDiffer
	if runOpts.DiffBin != "" {
		differ = diff.NewDifferWithBinary(runOpts.DiffBin).WithContextLines(runOpts.DiffContextLines)
	} else {
		differ = diff.NewLibDiffer().WithContextLines(runOpts.DiffContextLines)
	}

	asm := assembler.NewAssembler(runOpts.MainDir, runOpts.PrDir, differ, noise.NewClassifier(runOpts.KnownNoise...), assembler.Options{
		IncludeKnownNoise:     runOpts.IncludeKnownNoise,
		IncludeRemovedMethods: runOpts.IncludeRemovedMethods,
		IncludeNewMethods:     runOpts.IncludeNewMethods,
		Concurrency:           runOpts.Concurrency,
	})
	if runOpts.AnnotationsPath != "" {
		annotator, err := annotate.LoadFile(runOpts.AnnotationsPath)
		if err != nil {
			return err
		}
		fmt.Printf("📝 Loaded %d method annotations\n", annotator.Len())
		asm.WithAnnotator(annotator)
	}

	renderer := template.NewRenderer()
	runMetrics := metrics.NewRunMetrics()

	var r runner.RunnerInterface
	var runID string
	switch runOpts.RunMode {
	case runner.RUN_MODE_GITHUB:
		ghClient, err := github.NewClient()
		if err != nil {
			return fmt.Errorf("GitHub authentication failed: %w", err)
		}
		ghRunner, err := runner.NewRunnerGitHub(ctx, runOpts, ghClient, parser, analyzer, asm, renderer, runMetrics)
		if err != nil {
			return err
		}
		r, runID = ghRunner, ghRunner.RunID
	default:
		localRunner, err := runner.NewRunnerLocal(ctx, runOpts, parser, analyzer, asm, renderer, runMetrics)
		if err != nil {
			return err
		}
		r, runID = localRunner, localRunner.RunID
	}

	shutdown, err := trace.InitTracer("jitdiff", runID, runOpts.EnableExportPerformanceReport, runOpts.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	defer shutdown()

	if runOpts.RunMode == runner.RUN_MODE_GITHUB {
		fmt.Printf("📥 Fetching PR #%d information...\n", runOpts.GhPrNumber)
	}
	if err := r.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize runner: %w", err)
	}

	fmt.Println("🔍 Extracting and diffing methods...")
	if err := r.Process(); err != nil {
		return fmt.Errorf("failed to process: %w", err)
	}

	if runOpts.RunMode == runner.RUN_MODE_GITHUB {
		fmt.Println("✅ GitHub comment posted successfully")
	} else {
		fmt.Printf("✅ Report written to: %s\n", runOpts.OutputDir)
	}
	return nil
}

// loadConfig reads path, or the default config file when path is empty and the file exists
func loadConfig(path string) (*config.JitDiffConfig, error) {
	loader := config.NewLoader()

	if path == "" {
		if _, err := os.Stat(config.DEFAULT_CONFIG_FILE); err != nil {
			return config.DefaultConfig(), nil
		}
		path = config.DEFAULT_CONFIG_FILE
	}

	cfg, err := loader.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := loader.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	fmt.Printf("✅ Loaded config from %s\n", path)
	return cfg, nil
}

// buildRunnerOptions merges the config file with the flags the user explicitly set
func buildRunnerOptions(opts *options, cfg *config.JitDiffConfig, changed func(string) bool) *runner.Options {
	ro := &runner.Options{
		RunMode:      opts.runMode,
		MainDir:      opts.mainDir,
		PrDir:        opts.prDir,
		SummaryFile:  opts.summaryFile,
		AnalyzeBin:   opts.analyzeBin,
		AnalyzeCount: opts.analyzeCount,

		ConfigPath:    opts.configPath,
		TemplatesPath: opts.templatesPath,

		IncludeKnownNoise:     cfg.IncludeKnownNoise,
		IncludeRemovedMethods: cfg.IncludeRemovedMethods,
		IncludeNewMethods:     cfg.IncludeNewMethods,
		KnownNoise:            cfg.KnownNoise,
		AnnotationsPath:       cfg.Annotations,

		MaxMethods:     cfg.MaxMethods,
		MaxReportBytes: cfg.MaxReportBytes,
		Concurrency:    cfg.Concurrency,
		Timeout:        opts.timeout,

		DiffBin:          opts.diffBin,
		DiffContextLines: cfg.DiffContextLines,

		GhRepo:     opts.ghRepo,
		GhPrNumber: opts.ghPrNumber,

		OutputDir:                     opts.outputDir,
		EnableExportReport:            opts.enableExportReport,
		EnableExportPerformanceReport: opts.enableTrace,
	}

	if changed("include-known-noise") {
		ro.IncludeKnownNoise = opts.includeKnownNoise
	}
	if changed("include-removed") {
		ro.IncludeRemovedMethods = opts.includeRemoved
	}
	if changed("include-new") {
		ro.IncludeNewMethods = opts.includeNew
	}
	if changed("annotations") {
		ro.AnnotationsPath = opts.annotationsPath
	}
	if changed("max-methods") {
		ro.MaxMethods = opts.maxMethods
	}
	if changed("max-report-bytes") {
		ro.MaxReportBytes = opts.maxReportBytes
	}
	if changed("concurrency") {
		ro.Concurrency = opts.concurrency
	}
	if changed("diff-context") {
		ro.DiffContextLines = opts.diffContextLines
	}

	return ro
}

func validateOptions(opts *runner.Options) error {
	if opts.MainDir == "" || opts.PrDir == "" {
		return fmt.Errorf("--main-dir and --pr-dir are required")
	}
	if opts.MaxMethods < 0 {
		return fmt.Errorf("--max-methods must not be negative")
	}
	if opts.MaxReportBytes <= 0 {
		return fmt.Errorf("--max-report-bytes must be positive")
	}
	if opts.Concurrency < 0 {
		return fmt.Errorf("--concurrency must not be negative")
	}
	if opts.DiffContextLines < 0 {
		return fmt.Errorf("--diff-context must not be negative")
	}

	switch opts.RunMode {
	case runner.RUN_MODE_GITHUB:
		if opts.GhRepo == "" {
			return fmt.Errorf("--gh-repo is required in github mode")
		}
		if opts.GhPrNumber <= 0 {
			return fmt.Errorf("--gh-pr-number is required in github mode")
		}
	case runner.RUN_MODE_LOCAL:
		if opts.OutputDir == "" {
			return fmt.Errorf("--output-dir is required in local mode")
		}
	default:
		return fmt.Errorf("invalid run mode: %s (must be 'github' or 'local')", opts.RunMode)
	}

	return nil
}

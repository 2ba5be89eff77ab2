package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gh-nvat/jitdiff/src/pkg/analyze"
	"github.com/gh-nvat/jitdiff/src/pkg/assembler"
	"github.com/gh-nvat/jitdiff/src/pkg/metrics"
	"github.com/gh-nvat/jitdiff/src/pkg/models"
	"github.com/gh-nvat/jitdiff/src/pkg/report"
	"github.com/gh-nvat/jitdiff/src/pkg/summary"
	"github.com/gh-nvat/jitdiff/src/pkg/template"
	"github.com/gh-nvat/jitdiff/src/pkg/trace"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	log "github.com/sirupsen/logrus"
)

var logger *log.Entry = log.WithFields(log.Fields{
	"package": "runner",
})

// SectionResult is the outcome of one report section
type SectionResult struct {
	Section      models.SectionData
	Stats        assembler.Stats
	NoiseRemoved bool
}

type RunnerBase struct {
	Context context.Context
	Options *Options

	RunMode string
	RunID   string

	// Labels shown for the compared sides
	BaseLabel string
	HeadLabel string

	Parser    summary.SummaryParser
	Analyzer  analyze.SummaryAnalyzer
	Assembler assembler.DiffAssembler
	Renderer  *template.Renderer
	Metrics   *metrics.RunMetrics

	// Instance receives Output so that Process reaches the mode-specific implementation
	Instance RunnerInterface
}

// make RunnerBase implement RunnerInterface
var _ RunnerInterface = (*RunnerBase)(nil)

func NewRunnerBase(
	ctx context.Context,
	options *Options,
	parser summary.SummaryParser,
	analyzer analyze.SummaryAnalyzer,
	asm assembler.DiffAssembler,
	renderer *template.Renderer,
	runMetrics *metrics.RunMetrics,
) (*RunnerBase, error) {
	runner := &RunnerBase{
		Context:   ctx,
		Options:   options,
		RunMode:   options.RunMode,
		RunID:     uuid.NewString(),
		BaseLabel: filepath.Base(options.MainDir),
		HeadLabel: filepath.Base(options.PrDir),
		Parser:    parser,
		Analyzer:  analyzer,
		Assembler: asm,
		Renderer:  renderer,
		Metrics:   runMetrics,
	}
	return runner, nil
}

func (r *RunnerBase) Initialize() error {
	logger.Info("Initializing runner: starting...")

	if r.Parser == nil || r.Assembler == nil || r.Renderer == nil || r.Metrics == nil {
		return fmt.Errorf("parser, assembler, renderer and metrics are required")
	}
	if r.Options.SummaryFile == "" && r.Analyzer == nil {
		return fmt.Errorf("either a summary file or an analyzer is required")
	}
	if r.Options.MaxReportBytes <= 0 {
		return fmt.Errorf("max report bytes must be positive, got %d", r.Options.MaxReportBytes)
	}

	logger.WithField("runID", r.RunID).Info("Initialize runner: done.")
	return nil
}

// LoadSummary reads the summary file, or runs the analyzer when none is given
func (r *RunnerBase) LoadSummary() (string, error) {
	ctx, span := trace.StartSpan(r.Context, "LoadSummary")
	defer span.End()

	if r.Options.SummaryFile != "" {
		logger.WithField("path", r.Options.SummaryFile).Info("LoadSummary: reading summary file")
		data, err := os.ReadFile(r.Options.SummaryFile)
		if err != nil {
			return "", fmt.Errorf("failed to read summary file: %w", err)
		}
		return string(data), nil
	}

	if err := r.Analyzer.ValidateDumpDirs(r.Options.MainDir, r.Options.PrDir); err != nil {
		return "", fmt.Errorf("invalid dump directories: %w", err)
	}

	count := r.Options.AnalyzeCount
	if count <= 0 {
		count = DEFAULT_ANALYZE_COUNT
	}
	logger.WithField("count", count).Info("LoadSummary: running analyzer")
	text, err := r.Analyzer.Analyze(ctx, r.Options.MainDir, r.Options.PrDir, count)
	if err != nil {
		return "", fmt.Errorf("failed to analyze dumps: %w", err)
	}
	return text, nil
}

// ProcessSection assembles the entries of one kind and fits them into maxBytes
func (r *RunnerBase) ProcessSection(kind models.ChangeKind, entries []models.ChangeEntry, maxBytes int) (*SectionResult, error) {
	ctx, span := trace.StartSpan(r.Context, "ProcessSection",
		attribute.String("kind", string(kind)),
		attribute.Int("entries", len(entries)),
	)
	defer span.End()

	sectionLogger := logger.WithField("kind", kind)
	sectionLogger.WithField("entries", len(entries)).Info("ProcessSection: starting...")

	res, err := r.Assembler.Assemble(ctx, entries, r.Options.MaxMethods)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble %s: %w", kind, err)
	}

	rendered, truncated := report.Budget(res.Fragments, maxBytes, kind)

	changedLines := 0
	for _, m := range res.Methods {
		changedLines += m.LineCount()
	}

	section := models.SectionData{
		Kind:         kind,
		Candidates:   len(entries),
		Fragments:    len(res.Fragments),
		ChangedLines: changedLines,
		Methods:      res.Methods,
		Truncated:    truncated,
		Rendered:     rendered,
	}
	r.Metrics.ObserveSection(kind, res.Stats, section)

	sectionLogger.WithFields(log.Fields{
		"fragments": len(res.Fragments),
		"bytes":     len(rendered),
		"truncated": truncated,
		"noise":     res.NoiseRemoved,
	}).Info("ProcessSection: done.")

	return &SectionResult{
		Section:      section,
		Stats:        res.Stats,
		NoiseRemoved: res.NoiseRemoved,
	}, nil
}

func (r *RunnerBase) Process() error {
	logger.Info("Process: starting...")
	start := time.Now()

	ctx, span := trace.StartSpan(r.Context, "Process", attribute.String("runID", r.RunID))
	defer span.End()
	r.Context = ctx

	text, err := r.LoadSummary()
	if err != nil {
		return err
	}

	regressions := r.Parser.Parse(text, models.KindRegressions)
	improvements := r.Parser.Parse(text, models.KindImprovements)
	logger.WithField("regressions", len(regressions)).WithField("improvements", len(improvements)).Info("Parsed summary")

	// Regressions get the budget first, improvements get what is left
	remaining := r.Options.MaxReportBytes
	regSection, err := r.ProcessSection(models.KindRegressions, regressions, remaining)
	if err != nil {
		return err
	}
	remaining = max(remaining-len(regSection.Section.Rendered), 0)

	impSection, err := r.ProcessSection(models.KindImprovements, improvements, remaining)
	if err != nil {
		return err
	}

	reportData := models.ReportData{
		RunID:          r.RunID,
		Timestamp:      time.Now().UTC(),
		BaseCommit:     r.BaseLabel,
		HeadCommit:     r.HeadLabel,
		Regressions:    regSection.Section,
		Improvements:   impSection.Section,
		NoiseRemoved:   regSection.NoiseRemoved || impSection.NoiseRemoved,
		MaxReportBytes: r.Options.MaxReportBytes,
	}

	markdown, err := r.RenderReport(&reportData)
	if err != nil {
		return err
	}

	r.Metrics.SetNoiseRemoved(reportData.NoiseRemoved)
	r.Metrics.SetDuration(time.Since(start))

	output := r.Instance
	if output == nil {
		output = r
	}
	return output.Output(&reportData, markdown)
}

// RenderReport renders the comment body.
// A custom templates path must exist; the default path is used only when present,
// otherwise the embedded template is used.
func (r *RunnerBase) RenderReport(data *models.ReportData) (string, error) {
	_, span := trace.StartSpan(r.Context, "RenderReport")
	defer span.End()

	templatesPath := r.Options.TemplatesPath
	var rendered string
	var err error

	switch {
	case templatesPath != "" && templatesPath != DEFAULT_TEMPLATES_PATH:
		logger.WithField("path", templatesPath).Info("Using custom templates")
		rendered, err = r.Renderer.RenderWithTemplates(templatesPath, data)
		if err != nil {
			return "", fmt.Errorf("failed to render report with custom templates: %w", err)
		}
	case templatesPath == DEFAULT_TEMPLATES_PATH && dirExists(templatesPath):
		logger.WithField("path", templatesPath).Info("Using templates")
		rendered, err = r.Renderer.RenderWithTemplates(templatesPath, data)
		if err != nil {
			return "", fmt.Errorf("failed to render report: %w", err)
		}
	default:
		logger.Info("Using default embedded template")
		rendered, err = r.Renderer.RenderDefault(data)
		if err != nil {
			return "", fmt.Errorf("failed to render report: %w", err)
		}
	}

	// The marker is what lets later runs find and update the comment
	if !strings.Contains(rendered, template.ToolCommentSignature) {
		rendered = template.ToolCommentSignature + "\n\n" + rendered
	}
	return rendered, nil
}

func (r *RunnerBase) Output(data *models.ReportData, markdown string) error {
	logger.Info("Output: starting...")
	if err := r.outputReportJson(data); err != nil {
		return err
	}
	logger.Info("Output: done.")
	return nil
}

// Exporting report json file to output directory if enabled
func (r *RunnerBase) outputReportJson(data *models.ReportData) error {
	if !r.Options.EnableExportReport {
		logger.Info("OutputJson: option was disabled")
		return nil
	}
	logger.Info("OutputJson: starting...")

	if err := os.MkdirAll(r.Options.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	resultsJson, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	filePath := filepath.Join(r.Options.OutputDir, "report.json")
	if err := os.WriteFile(filePath, resultsJson, 0644); err != nil {
		logger.WithField("filePath", filePath).WithField("error", err).Error("Failed to write report data to file")
		return err
	}
	logger.WithField("filePath", filePath).Info("Written report data to file")
	return nil
}

// Exporting metrics textfile to output directory if enabled
func (r *RunnerBase) outputMetrics() error {
	if !r.Options.EnableExportReport {
		return nil
	}
	filePath := filepath.Join(r.Options.OutputDir, metrics.METRICS_FILE_NAME)
	if err := r.Metrics.WriteToTextfile(filePath); err != nil {
		return err
	}
	logger.WithField("filePath", filePath).Info("Written metrics to file")
	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

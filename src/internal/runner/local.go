package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gh-nvat/jitdiff/src/pkg/analyze"
	"github.com/gh-nvat/jitdiff/src/pkg/assembler"
	"github.com/gh-nvat/jitdiff/src/pkg/metrics"
	"github.com/gh-nvat/jitdiff/src/pkg/models"
	"github.com/gh-nvat/jitdiff/src/pkg/summary"
	"github.com/gh-nvat/jitdiff/src/pkg/template"
)

const (
	REPORT_MARKDOWN_FILE = "report.md"
	REPORT_HTML_FILE     = "report.html"
)

type RunnerLocal struct {
	RunnerBase
}

// make RunnerLocal implement RunnerInterface
var _ RunnerInterface = (*RunnerLocal)(nil)

func NewRunnerLocal(
	ctx context.Context,
	options *Options,
	parser summary.SummaryParser,
	analyzer analyze.SummaryAnalyzer,
	asm assembler.DiffAssembler,
	renderer *template.Renderer,
	runMetrics *metrics.RunMetrics,
) (*RunnerLocal, error) {
	baseRunner, err := NewRunnerBase(ctx, options, parser, analyzer, asm, renderer, runMetrics)
	if err != nil {
		return nil, err
	}
	runner := &RunnerLocal{
		RunnerBase: *baseRunner,
	}
	runner.Instance = runner
	return runner, nil
}

func (r *RunnerLocal) Initialize() error {
	if r.Options.OutputDir == "" {
		return fmt.Errorf("output directory is required in local mode")
	}
	return r.RunnerBase.Initialize()
}

func (r *RunnerLocal) Process() error {
	return r.RunnerBase.Process()
}

// Output writes the markdown report, its HTML preview, and optional json and metrics
func (r *RunnerLocal) Output(data *models.ReportData, markdown string) error {
	logger.Info("Output: local mode")

	if err := os.MkdirAll(r.Options.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	mdPath := filepath.Join(r.Options.OutputDir, REPORT_MARKDOWN_FILE)
	if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	logger.WithField("filePath", mdPath).Info("Written markdown report")

	html, err := r.Renderer.RenderHTML(markdown)
	if err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	htmlPath := filepath.Join(r.Options.OutputDir, REPORT_HTML_FILE)
	if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write html report: %w", err)
	}
	logger.WithField("filePath", htmlPath).Info("Written html report")

	if err := r.outputMetrics(); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return r.RunnerBase.Output(data, markdown)
}

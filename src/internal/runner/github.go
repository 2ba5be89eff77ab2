package runner

import (
	"context"
	"fmt"

	"github.com/gh-nvat/jitdiff/src/pkg/analyze"
	"github.com/gh-nvat/jitdiff/src/pkg/assembler"
	"github.com/gh-nvat/jitdiff/src/pkg/github"
	"github.com/gh-nvat/jitdiff/src/pkg/metrics"
	"github.com/gh-nvat/jitdiff/src/pkg/models"
	"github.com/gh-nvat/jitdiff/src/pkg/report"
	"github.com/gh-nvat/jitdiff/src/pkg/summary"
	"github.com/gh-nvat/jitdiff/src/pkg/template"
)

type RunnerGitHub struct {
	RunnerBase

	ghclient github.GitHubClient

	prInfo   *models.PullRequest
	comments []*models.Comment
}

// make RunnerGitHub implement RunnerInterface
var _ RunnerInterface = (*RunnerGitHub)(nil)

func NewRunnerGitHub(
	ctx context.Context,
	options *Options,
	ghclient github.GitHubClient,
	parser summary.SummaryParser,
	analyzer analyze.SummaryAnalyzer,
	asm assembler.DiffAssembler,
	renderer *template.Renderer,
	runMetrics *metrics.RunMetrics,
) (*RunnerGitHub, error) {
	if ghclient == nil {
		return nil, fmt.Errorf("GitHub client is not initialized")
	}
	baseRunner, err := NewRunnerBase(ctx, options, parser, analyzer, asm, renderer, runMetrics)
	if err != nil {
		return nil, err
	}
	runner := &RunnerGitHub{
		RunnerBase: *baseRunner,
		ghclient:   ghclient,
	}
	runner.Instance = runner
	return runner, nil
}

func (r *RunnerGitHub) Initialize() error {
	if err := r.RunnerBase.Initialize(); err != nil {
		return err
	}
	if _, _, err := github.ParseOwnerRepo(r.Options.GhRepo); err != nil {
		return fmt.Errorf("failed to parse repository: %w", err)
	}
	if r.Options.GhPrNumber <= 0 {
		return fmt.Errorf("invalid pull request number: %d", r.Options.GhPrNumber)
	}
	if err := r.fetchAndSetPullRequestInfo(); err != nil {
		return fmt.Errorf("failed to fetch pull request info: %w", err)
	}

	r.BaseLabel = fmt.Sprintf("%s@%s", r.prInfo.BaseRef, github.ShortSHA(r.prInfo.BaseSHA))
	r.HeadLabel = fmt.Sprintf("%s@%s", r.prInfo.HeadRef, github.ShortSHA(r.prInfo.HeadSHA))
	logger.WithField("pr", r.prInfo.Number).WithField("base", r.BaseLabel).WithField("head", r.HeadLabel).Info("Initialize: pull request loaded")
	return nil
}

// Fetch and set pull request data into struct from GitHub
func (r *RunnerGitHub) fetchAndSetPullRequestInfo() error {
	ctx := r.Context

	// Create channels for parallel execution
	type prResult struct {
		pr  *models.PullRequest
		err error
	}
	type commentsResult struct {
		comments []*models.Comment
		err      error
	}

	prChan := make(chan prResult, 1)
	commentsChan := make(chan commentsResult, 1)

	// Fetch PR info in parallel
	go func() {
		pr, err := r.ghclient.GetPR(ctx, r.Options.GhRepo, r.Options.GhPrNumber)
		prChan <- prResult{pr: pr, err: err}
	}()

	// Fetch comments in parallel
	go func() {
		comments, err := r.ghclient.GetComments(ctx, r.Options.GhRepo, r.Options.GhPrNumber)
		commentsChan <- commentsResult{comments: comments, err: err}
	}()

	// Wait for both results
	select {
	case prRes := <-prChan:
		if prRes.err != nil {
			return fmt.Errorf("failed to get PR info: %w", prRes.err)
		}
		r.prInfo = prRes.pr
	case <-ctx.Done():
		return fmt.Errorf("PR fetch cancelled: %w", ctx.Err())
	}

	select {
	case commentsRes := <-commentsChan:
		if commentsRes.err != nil {
			return fmt.Errorf("failed to get PR comments: %w", commentsRes.err)
		}
		r.comments = commentsRes.comments
	case <-ctx.Done():
		return fmt.Errorf("comments fetch cancelled: %w", ctx.Err())
	}

	return nil
}

func (r *RunnerGitHub) Process() error {
	return r.RunnerBase.Process()
}

// Output posts the report as a PR comment, updating the previous one when found
func (r *RunnerGitHub) Output(data *models.ReportData, markdown string) error {
	logger.Info("Output: github mode")

	body := github.TrimToCommentLimit(markdown, report.GITHUB_COMMENT_MAX_BYTES, report.TRUNCATION_NOTE)
	if len(body) < len(markdown) {
		logger.WithField("bytes", len(markdown)).Warn("Report exceeded the comment limit and was trimmed")
	}

	if existing := github.FindMarkerComment(r.comments); existing != nil {
		if err := r.ghclient.UpdateComment(r.Context, r.Options.GhRepo, existing.ID, body); err != nil {
			return err
		}
		logger.WithField("commentID", existing.ID).Info("Updated existing comment")
	} else {
		created, err := r.ghclient.CreateComment(r.Context, r.Options.GhRepo, r.Options.GhPrNumber, body)
		if err != nil {
			return err
		}
		logger.WithField("commentID", created.ID).Info("Created new comment")
	}

	if err := r.outputMetrics(); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return r.RunnerBase.Output(data, markdown)
}

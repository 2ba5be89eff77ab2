package assembler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gh-nvat/jitdiff/src/pkg/dasm"
	"github.com/gh-nvat/jitdiff/src/pkg/diff"
	"github.com/gh-nvat/jitdiff/src/pkg/models"
	"github.com/gh-nvat/jitdiff/src/pkg/noise"
	"github.com/gh-nvat/jitdiff/src/pkg/summary"
	"github.com/gh-nvat/jitdiff/src/pkg/trace"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var logger = log.WithField("package", "assembler")

// Options holds the inclusion policy and the worker limit
type Options struct {
	IncludeKnownNoise     bool
	IncludeRemovedMethods bool
	IncludeNewMethods     bool
	// Maximum number of entries processed at once, defaults to the CPU count
	Concurrency int
}

// Annotator supplies an optional note shown above a method's diff
type Annotator interface {
	Annotate(ctx context.Context, method string) (string, error)
}

// Stats counts what happened to the entries the consumer looked at
type Stats struct {
	Candidates int `json:"candidates"`
	Filtered   int `json:"filtered"`
	Unchanged  int `json:"unchanged"`
	Noisy      int `json:"noisy"`
	Failed     int `json:"failed"`
	Accepted   int `json:"accepted"`
}

// Result is the output of one Assemble call
type Result struct {
	// Fragments in ranking order, at most maxCount
	Fragments []string
	// Methods has one element per fragment
	Methods      []models.DiffResult
	NoiseRemoved bool
	Stats        Stats
}

// DiffAssembler defines the interface for turning ranked entries into report fragments
type DiffAssembler interface {
	Assemble(ctx context.Context, entries []models.ChangeEntry, maxCount int) (Result, error)
}

// Assembler extracts, diffs and formats methods with a bounded worker pool
type Assembler struct {
	mainDir    string
	prDir      string
	extractor  dasm.MethodExtractor
	differ     diff.LineDiffer
	classifier noise.NoiseClassifier
	annotator  Annotator
	opts       Options
}

// Ensure Assembler implements DiffAssembler
var _ DiffAssembler = (*Assembler)(nil)

// NewAssembler creates an assembler reading dumps from mainDir and prDir
func NewAssembler(mainDir, prDir string, differ diff.LineDiffer, classifier noise.NoiseClassifier, opts Options) *Assembler {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	return &Assembler{
		mainDir:    mainDir,
		prDir:      prDir,
		extractor:  dasm.NewExtractor(),
		differ:     differ,
		classifier: classifier,
		opts:       opts,
	}
}

// WithAnnotator sets the annotation lookup
func (a *Assembler) WithAnnotator(annotator Annotator) *Assembler {
	a.annotator = annotator
	return a
}

// WithExtractor replaces the dump extractor
func (a *Assembler) WithExtractor(extractor dasm.MethodExtractor) *Assembler {
	a.extractor = extractor
	return a
}

type entryStatus int

const (
	statusAccepted entryStatus = iota
	statusFiltered
	statusUnchanged
	statusNoisy
	statusFailed
)

type outcome struct {
	index    int
	status   entryStatus
	fragment string
	result   models.DiffResult
}

// Assemble processes entries concurrently and returns at most maxCount fragments
// in ranking order. Once maxCount fragments are accepted the remaining work is
// cancelled. If ctx is cancelled the fragments accepted so far are returned
// together with the context error.
func (a *Assembler) Assemble(ctx context.Context, entries []models.ChangeEntry, maxCount int) (Result, error) {
	result := Result{
		Fragments: []string{},
		Methods:   []models.DiffResult{},
		Stats:     Stats{Candidates: len(entries)},
	}
	if len(entries) == 0 || maxCount <= 0 {
		return result, ctx.Err()
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make(chan outcome, len(entries))

	g, gctx := errgroup.WithContext(workCtx)
	g.SetLimit(a.opts.Concurrency)

	go func() {
		for i, entry := range entries {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				out := a.process(gctx, entry)
				out.index = i
				outcomes <- out
				return nil
			})
		}
		_ = g.Wait()
		close(outcomes)
	}()

	pending := make(map[int]outcome)
	next := 0
	done := false

	for out := range outcomes {
		if done {
			continue
		}
		pending[out.index] = out

		for !done {
			o, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			if ctx.Err() != nil {
				done = true
				break
			}

			switch o.status {
			case statusAccepted:
				result.Fragments = append(result.Fragments, o.fragment)
				result.Methods = append(result.Methods, o.result)
				result.Stats.Accepted++
			case statusFiltered:
				result.Stats.Filtered++
			case statusUnchanged:
				result.Stats.Unchanged++
			case statusNoisy:
				result.Stats.Noisy++
				result.NoiseRemoved = true
			case statusFailed:
				result.Stats.Failed++
			}

			if len(result.Fragments) >= maxCount {
				logger.WithField("maxCount", maxCount).Debug("Reached fragment limit, cancelling remaining entries")
				done = true
				cancel()
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// allowed applies the removed/new method policy to an entry
func (a *Assembler) allowed(entry models.ChangeEntry) bool {
	if !a.opts.IncludeRemovedMethods && summary.IsRemovedMethod(entry.Description) {
		return false
	}
	if !a.opts.IncludeNewMethods && summary.IsNewMethod(entry.Description) {
		return false
	}
	return true
}

// process runs one entry end to end. Failures are logged and reported as statusFailed.
func (a *Assembler) process(ctx context.Context, entry models.ChangeEntry) outcome {
	ctx, span := trace.StartSpan(ctx, "ProcessEntry",
		attribute.String("method", entry.MethodName),
		attribute.String("dump", entry.DumpFileID),
	)
	defer span.End()

	entryLogger := logger.WithFields(log.Fields{
		"method": entry.MethodName,
		"dump":   entry.DumpFileID,
	})

	if !a.allowed(entry) {
		entryLogger.Debug("Excluded by policy")
		return outcome{status: statusFiltered}
	}

	base, err := a.extractor.ExtractMethod(ctx, filepath.Join(a.mainDir, entry.DumpFileID), entry.MethodName)
	if err != nil {
		logFailure(ctx, entryLogger, err, "Failed to extract base method")
		return outcome{status: statusFailed}
	}
	head, err := a.extractor.ExtractMethod(ctx, filepath.Join(a.prDir, entry.DumpFileID), entry.MethodName)
	if err != nil {
		logFailure(ctx, entryLogger, err, "Failed to extract head method")
		return outcome{status: statusFailed}
	}

	lines, err := a.differ.DiffLines(ctx, base, head)
	if err != nil {
		logFailure(ctx, entryLogger, err, "Failed to diff method")
		return outcome{status: statusFailed}
	}

	added, deleted, total := diff.CalcLineChanges(lines)
	if total == 0 {
		entryLogger.Debug("No textual change")
		return outcome{status: statusUnchanged}
	}

	hasNoise := a.classifier.ContainsKnownNoise(lines)
	if hasNoise && !a.opts.IncludeKnownNoise {
		entryLogger.Debug("Known noise found, suppressing method")
		return outcome{status: statusNoisy}
	}

	fragment := FormatFragment(entry, a.annotation(ctx, entry.MethodName), lines)
	return outcome{
		status:   statusAccepted,
		fragment: fragment,
		result: models.DiffResult{
			Entry:            entry,
			Lines:            lines,
			AddedLineCount:   added,
			DeletedLineCount: deleted,
			HasKnownNoise:    hasNoise,
		},
	}
}

// logFailure warns about a failed entry. Entries stopped by cancellation, such as
// the ones still running when the fragment limit is reached, only log at debug.
func logFailure(ctx context.Context, entryLogger *log.Entry, err error, msg string) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		entryLogger.WithError(err).Debug(msg)
		return
	}
	entryLogger.WithError(err).Warn(msg)
}

// annotation looks up the note for method, a failed lookup is omitted
func (a *Assembler) annotation(ctx context.Context, method string) string {
	if a.annotator == nil {
		return ""
	}
	note, err := a.annotator.Annotate(ctx, method)
	if err != nil {
		logger.WithField("method", method).WithError(err).Debug("Annotation lookup failed")
		return ""
	}
	return strings.TrimSpace(note)
}

// FormatFragment builds the collapsible markdown block for one method
func FormatFragment(entry models.ChangeEntry, annotation string, lines []string) string {
	body := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) > 0 && strings.HasPrefix(line[1:], dasm.METHOD_END_MARKER) {
			continue
		}
		body = append(body, line)
	}

	var sb strings.Builder
	sb.WriteString("<details>\n")
	sb.WriteString(fmt.Sprintf("<summary>%s - %s</summary>\n\n", entry.Description, entry.MethodName))
	if annotation != "" {
		sb.WriteString(annotation)
		sb.WriteString("\n\n")
	}
	sb.WriteString(diff.FormatForMarkdown(body))
	sb.WriteString("\n\n</details>\n\n")
	return sb.String()
}

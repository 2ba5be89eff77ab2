package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	PERFORMANCE_REPORT_FILE = "performance-report.json"

	tracerName = "jitdiff"
)

var tracer trace.Tracer
var spanRecorder *SpanRecorder
var outputDir string
var runID string

// SpanRecorder records spans for human-readable reporting.
// Spans end on worker goroutines, so access is serialized.
type SpanRecorder struct {
	mu    sync.Mutex
	spans []spanRecord
}

func (r *SpanRecorder) add(record spanRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = append(r.spans, record)
}

func (r *SpanRecorder) snapshot() []spanRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]spanRecord(nil), r.spans...)
}

type spanRecord struct {
	Name       string
	Duration   time.Duration
	Start      time.Time
	End        time.Time
	ParentID   string
	SpanID     string
	Attributes map[string]string
}

type SpanInfo struct {
	Name       string            `json:"name"`
	DurationMs float64           `json:"durationMs"`
	Start      string            `json:"start"`
	End        string            `json:"end"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []SpanInfo        `json:"children,omitempty"`
}

type PerformanceReport struct {
	RunID           string     `json:"runId,omitempty"`
	Spans           []SpanInfo `json:"spans"`
	TotalDurationMs float64    `json:"totalDurationMs"`
	Timestamp       string     `json:"timestamp"`
}

// InitTracer initializes OpenTelemetry tracing.
// The returned shutdown func flushes spans and writes PERFORMANCE_REPORT_FILE into outDir.
func InitTracer(serviceName, id string, enabled bool, outDir string) (func(), error) {
	if !enabled {
		return func() {}, nil
	}

	spanRecorder = &SpanRecorder{spans: make([]spanRecord, 0)}
	outputDir = outDir
	runID = id

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("jitdiff.run_id", id),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(&recordingSpanProcessor{recorder: spanRecorder}),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(tracerName)

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Silently fail
		_ = tp.Shutdown(ctx)
		_ = ExportReport()
	}

	return shutdown, nil
}

// StartSpan starts a new span, or returns the current one when tracing is off
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// recordingSpanProcessor records spans for human-readable summary
type recordingSpanProcessor struct {
	recorder *SpanRecorder
}

func (p *recordingSpanProcessor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {}

func (p *recordingSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	if p.recorder == nil {
		return
	}

	parentID := ""
	if s.Parent().IsValid() {
		parentID = s.Parent().SpanID().String()
	}

	var attrs map[string]string
	if kvs := s.Attributes(); len(kvs) > 0 {
		attrs = make(map[string]string, len(kvs))
		for _, kv := range kvs {
			attrs[string(kv.Key)] = kv.Value.Emit()
		}
	}

	p.recorder.add(spanRecord{
		Name:       s.Name(),
		Duration:   s.EndTime().Sub(s.StartTime()),
		Start:      s.StartTime(),
		End:        s.EndTime(),
		SpanID:     s.SpanContext().SpanID().String(),
		ParentID:   parentID,
		Attributes: attrs,
	})
}

func (p *recordingSpanProcessor) Shutdown(ctx context.Context) error   { return nil }
func (p *recordingSpanProcessor) ForceFlush(ctx context.Context) error { return nil }

// ExportReport exports the performance report to a JSON file
func ExportReport() error {
	if spanRecorder == nil || outputDir == "" {
		return nil
	}
	records := spanRecorder.snapshot()
	if len(records) == 0 {
		return nil
	}

	hierarchy := buildHierarchy(records)

	totalDurationMs := 0.0
	for _, span := range hierarchy {
		totalDurationMs += span.DurationMs
	}

	report := PerformanceReport{
		RunID:           runID,
		Spans:           hierarchy,
		TotalDurationMs: totalDurationMs,
		Timestamp:       time.Now().Format(time.RFC3339Nano),
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reportPath := filepath.Join(outputDir, PERFORMANCE_REPORT_FILE)
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(reportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

// buildHierarchy converts flat span records into a tree ordered by start time.
// Spans whose parent was not recorded are treated as roots.
func buildHierarchy(records []spanRecord) []SpanInfo {
	known := make(map[string]bool, len(records))
	for _, record := range records {
		known[record.SpanID] = true
	}

	children := make(map[string][]spanRecord)
	var roots []spanRecord
	for _, record := range records {
		if record.ParentID == "" || !known[record.ParentID] {
			roots = append(roots, record)
			continue
		}
		children[record.ParentID] = append(children[record.ParentID], record)
	}

	var build func(records []spanRecord) []SpanInfo
	build = func(records []spanRecord) []SpanInfo {
		sort.Slice(records, func(i, j int) bool {
			return records[i].Start.Before(records[j].Start)
		})
		infos := make([]SpanInfo, 0, len(records))
		for _, record := range records {
			infos = append(infos, SpanInfo{
				Name:       record.Name,
				DurationMs: float64(record.Duration.Microseconds()) / 1000.0,
				Start:      record.Start.Format(time.RFC3339Nano),
				End:        record.End.Format(time.RFC3339Nano),
				Attributes: record.Attributes,
				Children:   build(children[record.SpanID]),
			})
		}
		return infos
	}

	return build(roots)
}

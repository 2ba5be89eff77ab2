package runner

import "time"

const (
	RUN_MODE_GITHUB = "github"
	RUN_MODE_LOCAL  = "local"

	DEFAULT_TEMPLATES_PATH = "./templates"
	DEFAULT_ANALYZE_COUNT  = 100
)

type Options struct {
	// Run mode
	RunMode string // "github" or "local"

	// Dump directories produced by the baseline and candidate builds
	MainDir string
	PrDir   string

	// Summary source: a pre-computed file, or the analyzer binary when empty
	SummaryFile  string
	AnalyzeBin   string
	AnalyzeCount int

	ConfigPath    string
	TemplatesPath string

	// Inclusion policy
	IncludeKnownNoise     bool
	IncludeRemovedMethods bool
	IncludeNewMethods     bool
	KnownNoise            []string
	AnnotationsPath       string

	// Limits
	MaxMethods     int
	MaxReportBytes int
	Concurrency    int
	Timeout        time.Duration

	// Diff collaborator
	DiffBin          string // empty means the in-process differ
	DiffContextLines int

	// GitHub mode options
	GhRepo     string
	GhPrNumber int

	// Output options
	OutputDir                     string
	EnableExportReport            bool
	EnableExportPerformanceReport bool
}

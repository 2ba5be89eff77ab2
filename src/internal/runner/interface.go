package runner

import "github.com/gh-nvat/jitdiff/src/pkg/models"

type RunnerInterface interface {
	// Initialize the runner with necessary context and data
	Initialize() error

	// Load the analysis summary text
	LoadSummary() (string, error)

	// Assemble and budget one section of the report
	ProcessSection(kind models.ChangeKind, entries []models.ChangeEntry, maxBytes int) (*SectionResult, error)

	// Main routine to process the runner
	Process() error

	// Handling the export
	Output(data *models.ReportData, markdown string) error
}

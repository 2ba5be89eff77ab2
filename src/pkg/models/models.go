package models

// ChangeKind selects which section of the analysis summary is processed
type ChangeKind string

const (
	KindRegressions  ChangeKind = "regressions"
	KindImprovements ChangeKind = "improvements"
)

// ChangeEntry is a single method listed by the analysis summary.
// Entries are kept in the rank order reported by the summary.
type ChangeEntry struct {
	Description string `json:"description"`
	DumpFileID  string `json:"dumpFileId"`
	MethodName  string `json:"methodName"`
}

package models

// DiffResult describes the outcome of diffing one method
type DiffResult struct {
	Entry            ChangeEntry `json:"entry"`
	Lines            []string    `json:"-"`
	AddedLineCount   int         `json:"addedLineCount"`
	DeletedLineCount int         `json:"deletedLineCount"`
	HasKnownNoise    bool        `json:"hasKnownNoise"`
}

// LineCount returns the number of changed lines
func (r DiffResult) LineCount() int {
	return r.AddedLineCount + r.DeletedLineCount
}

package diff

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// LibDiffer diffs dumps in process, without shelling out
type LibDiffer struct {
	contextLines int
}

// Ensure LibDiffer implements LineDiffer
var _ LineDiffer = (*LibDiffer)(nil)

// NewLibDiffer creates a new in-process differ
func NewLibDiffer() *LibDiffer {
	return &LibDiffer{contextLines: FULL_CONTEXT}
}

// WithContextLines limits the unchanged lines kept around each change, n <= 0 keeps the whole method
func (d *LibDiffer) WithContextLines(n int) *LibDiffer {
	d.contextLines = contextOrFull(n)
	return d
}

// DiffLines diffs base against head with full context
func (d *LibDiffer) DiffLines(ctx context.Context, base, head string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if base == head {
		return nil, nil
	}

	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(base),
		B:        splitLines(head),
		FromFile: "base",
		ToFile:   "head",
		Context:  d.contextLines,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to diff dumps: %w", err)
	}
	if unified == "" {
		return nil, nil
	}
	return ParseUnifiedLines(unified)
}

// splitLines splits s into newline-terminated lines.
// difflib.SplitLines appends an empty trailing line which would show up as context.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] += "\n"
	}
	return lines
}

package diff

import (
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// ParseUnifiedLines extracts the hunk body lines of a single-file unified diff.
// File headers, hunk headers and "\ No newline at end of file" markers are dropped.
func ParseUnifiedLines(unified string) ([]string, error) {
	fd, err := godiff.ParseFileDiff([]byte(unified))
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff output: %w", err)
	}

	var lines []string
	for _, hunk := range fd.Hunks {
		body := strings.TrimSuffix(string(hunk.Body), "\n")
		if body == "" {
			continue
		}
		for _, line := range strings.Split(body, "\n") {
			if strings.HasPrefix(line, `\`) {
				continue
			}
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// CalcLineChanges counts added and deleted lines in a diff body
// returns: addedLines, deletedLines, totalLines
func CalcLineChanges(lines []string) (int, int, int) {
	addedLines := 0
	deletedLines := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "+") {
			addedLines++
		}
		if strings.HasPrefix(line, "-") {
			deletedLines++
		}
	}
	return addedLines, deletedLines, addedLines + deletedLines
}

package summary

import (
	"regexp"
	"strings"

	"github.com/gh-nvat/jitdiff/src/pkg/models"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "summary")

const (
	REGRESSIONS_HEADER  = "Top method regressions"
	IMPROVEMENTS_HEADER = "Top method improvements"
)

var (
	// <description> : <dump-file-id> - <method-name>
	entryPattern = regexp.MustCompile(`^(.+?) : (.+?) - (\S+)`)

	removedPattern = regexp.MustCompile(`-100(\.0+)?\s*%`)
	newPattern     = regexp.MustCompile(`(?i)∞ of base|infinity|infinite`)
)

// SummaryParser defines the interface for reading analysis summaries
type SummaryParser interface {
	// Parse returns the entries of the requested section in rank order
	Parse(text string, kind models.ChangeKind) []models.ChangeEntry
}

// Parser extracts method change entries from a jit-analyze summary
type Parser struct{}

// Ensure Parser implements SummaryParser
var _ SummaryParser = (*Parser)(nil)

// NewParser creates a new summary parser
func NewParser() *Parser {
	return &Parser{}
}

// HeaderFor returns the section header line for the given kind
func HeaderFor(kind models.ChangeKind) string {
	if kind == models.KindImprovements {
		return IMPROVEMENTS_HEADER
	}
	return REGRESSIONS_HEADER
}

// Parse returns the entries listed under the section header for kind.
// A missing section is not an error: the analysis may report no changes of that kind.
func (p *Parser) Parse(text string, kind models.ChangeKind) []models.ChangeEntry {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	header := HeaderFor(kind)
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		// jit-analyze may suffix the header with the metric, e.g. " (bytes):"
		if strings.HasPrefix(strings.TrimSpace(line), header) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		logger.WithField("header", header).Debug("Section not found in summary")
		return []models.ChangeEntry{}
	}

	entries := []models.ChangeEntry{}
	dropped := 0
	for _, line := range lines[start:] {
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}

		entry, ok := parseEntry(line)
		if !ok {
			dropped++
			continue
		}
		entries = append(entries, entry)
	}

	logger.WithFields(log.Fields{
		"kind":    kind,
		"entries": len(entries),
		"dropped": dropped,
	}).Debug("Parsed summary section")
	return entries
}

func parseEntry(line string) (models.ChangeEntry, bool) {
	m := entryPattern.FindStringSubmatch(line)
	if m == nil {
		return models.ChangeEntry{}, false
	}
	return models.ChangeEntry{
		Description: strings.TrimSpace(m[1]),
		DumpFileID:  strings.TrimSpace(m[2]),
		MethodName:  m[3],
	}, true
}

// IsRemovedMethod reports whether the description belongs to a method that no longer exists in the head
func IsRemovedMethod(description string) bool {
	return removedPattern.MatchString(description)
}

// IsNewMethod reports whether the description belongs to a method that does not exist in the base
func IsNewMethod(description string) bool {
	return newPattern.MatchString(description)
}

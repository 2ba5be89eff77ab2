package report

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gh-nvat/jitdiff/src/pkg/models"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "report")

// GITHUB_COMMENT_MAX_BYTES is the size limit GitHub applies to a comment body
const GITHUB_COMMENT_MAX_BYTES = 65536

// TRUNCATION_NOTE is appended to a section when fragments were left out
const TRUNCATION_NOTE = "Note: some changes were skipped as they were too large to fit into a comment."

// SectionHeader returns the markdown header of a report section
func SectionHeader(kind models.ChangeKind) string {
	return fmt.Sprintf("## Top method %s", kind)
}

// Budget concatenates fragments in order under a byte budget.
// A fragment larger than the whole budget is skipped, the first fragment that
// would overflow the running total stops the section. Header and note are not
// counted against the budget. Zero fragments render as "".
// Returns the section markdown and whether anything was left out.
func Budget(fragments []string, maxBytes int, kind models.ChangeKind) (string, bool) {
	if len(fragments) == 0 {
		return "", false
	}

	var accepted []string
	total := 0
	truncated := false

	for i, fragment := range fragments {
		if len(fragment) > maxBytes {
			logger.WithFields(log.Fields{
				"kind":   kind,
				"index":  i,
				"size":   humanize.Bytes(uint64(len(fragment))),
				"budget": humanize.Bytes(uint64(max(maxBytes, 0))),
			}).Info("Fragment larger than the whole budget, skipping")
			truncated = true
			continue
		}
		if total+len(fragment) > maxBytes {
			logger.WithFields(log.Fields{
				"kind":     kind,
				"accepted": len(accepted),
				"left":     len(fragments) - i,
			}).Info("Budget exhausted, omitting remaining fragments")
			truncated = true
			break
		}
		accepted = append(accepted, fragment)
		total += len(fragment)
	}

	var sb strings.Builder
	sb.WriteString(SectionHeader(kind))
	sb.WriteString("\n\n")
	for _, fragment := range accepted {
		sb.WriteString(fragment)
	}
	if truncated {
		sb.WriteString(TRUNCATION_NOTE)
		sb.WriteString("\n")
	}
	return sb.String(), truncated
}

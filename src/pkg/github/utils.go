package github

import (
	"fmt"
	"strings"

	"github.com/gh-nvat/jitdiff/src/pkg/models"
)

// FindMarkerComment returns the first comment carrying GH_COMMENT_MARKER, or nil
func FindMarkerComment(comments []*models.Comment) *models.Comment {
	for _, comment := range comments {
		if comment != nil && strings.Contains(comment.Body, GH_COMMENT_MARKER) {
			return comment
		}
	}
	return nil
}

// ParseOwnerRepo parses a repository string into owner and repository
// Example: "owner/repository" -> "owner", "repository"
// Example: "owner/repository/subpath" -> "owner", "repository"
func ParseOwnerRepo(repo string) (owner, repository string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s", repo)
	}
	owner = parts[0]
	repository = parts[1]
	return owner, repository, nil
}

// ShortSHA shortens a commit SHA to 7 characters
func ShortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

const detailsClose = "</details>\n"

// TrimToCommentLimit cuts body to at most limit bytes and appends note.
// The cut lands after the last complete </details> block so no fence or block is
// left open, or on a line boundary when the kept part has no such block.
// GitHub rejects comment bodies above its size limit.
func TrimToCommentLimit(body string, limit int, note string) string {
	if len(body) <= limit {
		return body
	}
	cut := limit - len(note) - 1
	if cut <= 0 {
		return note
	}
	body = body[:cut]
	if i := strings.LastIndex(body, detailsClose); i >= 0 {
		body = body[:i+len(detailsClose)]
	} else if i := strings.LastIndex(body, "\n"); i > 0 {
		body = body[:i+1]
	}
	return body + note
}

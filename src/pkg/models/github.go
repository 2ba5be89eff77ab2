package models

import "time"

// PullRequest represents GitHub pull request information
type PullRequest struct {
	Number  int
	Title   string
	BaseSHA string
	HeadSHA string
	BaseRef string
	HeadRef string
	Updated time.Time
}

// Comment represents a GitHub comment
type Comment struct {
	ID        int64
	Body      string
	User      string
	UpdatedAt time.Time
}

package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gh-nvat/jitdiff/src/pkg/models"
	"github.com/gh-nvat/jitdiff/src/pkg/template"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var logger = log.WithField("package", "github")

const GH_COMMENT_MARKER = template.ToolCommentSignature

// GitHubClient defines the interface for GitHub API operations
type GitHubClient interface {
	// GetPR retrieves pull request information
	GetPR(ctx context.Context, repo string, number int) (*models.PullRequest, error)
	// CreateComment creates a new comment on a pull request
	CreateComment(ctx context.Context, repo string, number int, body string) (*models.Comment, error)
	// UpdateComment updates an existing comment
	UpdateComment(ctx context.Context, repo string, commentID int64, body string) error
	// GetComments retrieves all comments for a pull request
	GetComments(ctx context.Context, repo string, number int) ([]*models.Comment, error)
	// FindToolComment finds an existing tool-generated comment
	FindToolComment(ctx context.Context, repo string, prNumber int) (*models.Comment, error)
}

// Client handles GitHub API interactions using go-github
type Client struct {
	client *github.Client
}

// Ensure Client implements GitHubClient
var _ GitHubClient = (*Client)(nil)

// NewClient creates a new GitHub client
func NewClient() (*Client, error) {
	token := os.Getenv("GH_TOKEN")
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("GitHub token not found. Set GH_TOKEN or GITHUB_TOKEN environment variable")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &Client{
		client: github.NewClient(tc),
	}, nil
}

// NewClientWithBaseURL creates a client talking to a custom API endpoint,
// such as GitHub Enterprise or a test server
func NewClientWithBaseURL(httpClient *http.Client, baseURL string) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	client := github.NewClient(httpClient)
	client.BaseURL = u
	return &Client{client: client}, nil
}

// GetPR retrieves pull request information
func (c *Client) GetPR(ctx context.Context, repo string, number int) (*models.PullRequest, error) {
	owner, repo, err := ParseOwnerRepo(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repository: %w", err)
	}
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get PR: %w", err)
	}

	return &models.PullRequest{
		Number:  pr.GetNumber(),
		Title:   pr.GetTitle(),
		BaseRef: pr.GetBase().GetRef(),
		BaseSHA: pr.GetBase().GetSHA(),
		HeadRef: pr.GetHead().GetRef(),
		HeadSHA: pr.GetHead().GetSHA(),
		Updated: pr.GetUpdatedAt().Time,
	}, nil
}

// CreateComment creates a new comment on a pull request
func (c *Client) CreateComment(ctx context.Context, repo string, number int, body string) (*models.Comment, error) {
	owner, repo, err := ParseOwnerRepo(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repository: %w", err)
	}
	comment := &github.IssueComment{
		Body: github.String(body),
	}

	created, _, err := c.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return toComment(created), nil
}

// UpdateComment updates an existing comment
func (c *Client) UpdateComment(ctx context.Context, repo string, commentID int64, body string) error {
	owner, repo, err := ParseOwnerRepo(repo)
	if err != nil {
		return fmt.Errorf("failed to parse repository: %w", err)
	}
	comment := &github.IssueComment{
		Body: github.String(body),
	}

	_, res, err := c.client.Issues.EditComment(ctx, owner, repo, commentID, comment)
	if res != nil {
		logger.WithField("commentID", commentID).WithField("status", res.StatusCode).Debug("Updated comment")
	}
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}

	return nil
}

// GetComments retrieves all comments for a pull request, following pagination
func (c *Client) GetComments(ctx context.Context, repo string, prNumber int) ([]*models.Comment, error) {
	owner, repo, err := ParseOwnerRepo(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repository: %w", err)
	}
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var allComments []*models.Comment
	for {
		comments, resp, err := c.client.Issues.ListComments(ctx, owner, repo, prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to get comments: %w", err)
		}

		for _, comment := range comments {
			allComments = append(allComments, toComment(comment))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// FindToolComment finds an existing tool-generated comment.
// If multiple comments carry the marker, the first one is returned.
func (c *Client) FindToolComment(ctx context.Context, repo string, prNumber int) (*models.Comment, error) {
	comments, err := c.GetComments(ctx, repo, prNumber)
	if err != nil {
		return nil, err
	}

	return FindMarkerComment(comments), nil
}

func toComment(c *github.IssueComment) *models.Comment {
	return &models.Comment{
		ID:        c.GetID(),
		Body:      c.GetBody(),
		User:      c.GetUser().GetLogin(),
		UpdatedAt: c.GetUpdatedAt().Time,
	}
}

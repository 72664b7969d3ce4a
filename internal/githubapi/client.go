// Package githubapi provides a small GitHub REST API client for pull
// request, commit and comment operations.
package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	defaultAPIURL = "https://api.github.com"
	// perPage is the page size for paginated listings.
	perPage = 100
)

// Client talks to one repository with a token credential.
type Client struct {
	logger *slog.Logger
	httpc  *http.Client
	apiURL string
	token  string
	repo   string
	owner  string
	name   string
}

// SplitRepo validates and splits an owner/repo slug.
func SplitRepo(repo string) (owner, name string, err error) {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return "", "", fmt.Errorf("repository is empty")
	}
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("invalid repository slug %q, expected owner/repo", repo)
	}
	return parts[0], parts[1], nil
}

// NewClient validates the repository slug and returns a REST client bound to it.
func NewClient(logger *slog.Logger, apiURL, token, repo string) (*Client, error) {
	owner, name, err := SplitRepo(repo)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(apiURL) == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		logger: logger,
		httpc:  http.DefaultClient,
		apiURL: strings.TrimSuffix(apiURL, "/"),
		token:  token,
		repo:   repo,
		owner:  owner,
		name:   name,
	}, nil
}

// Owner returns the repository owner part of the slug.
func (c *Client) Owner() string { return c.owner }

// Name returns the repository name part of the slug.
func (c *Client) Name() string { return c.name }

// GetPullRequest fetches the pull request title and body.
func (c *Client) GetPullRequest(ctx context.Context, number int) (*PullRequest, error) {
	if number <= 0 {
		return nil, fmt.Errorf("pull request number must be positive")
	}
	var pr PullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", c.owner, c.name, number)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// ListPullRequestCommits returns every commit of the pull request in API order.
func (c *Client) ListPullRequestCommits(ctx context.Context, number int) ([]Commit, error) {
	if number <= 0 {
		return nil, fmt.Errorf("pull request number must be positive")
	}
	var out []Commit
	for page := 1; ; page++ {
		var nodes []commitNode
		path := fmt.Sprintf("/repos/%s/%s/pulls/%d/commits?per_page=%d&page=%d", c.owner, c.name, number, perPage, page)
		if err := c.doJSON(ctx, http.MethodGet, path, nil, &nodes); err != nil {
			return nil, err
		}
		for _, node := range nodes {
			out = append(out, Commit{
				SHA:     strings.TrimSpace(node.SHA),
				Message: node.Commit.Message,
			})
		}
		if len(nodes) < perPage {
			break
		}
	}
	return out, nil
}

// ListIssueComments returns every conversation comment of the pull request in API order.
func (c *Client) ListIssueComments(ctx context.Context, number int) ([]IssueComment, error) {
	if number <= 0 {
		return nil, fmt.Errorf("pull request number must be positive")
	}
	var out []IssueComment
	for page := 1; ; page++ {
		var nodes []commentNode
		path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments?per_page=%d&page=%d", c.owner, c.name, number, perPage, page)
		if err := c.doJSON(ctx, http.MethodGet, path, nil, &nodes); err != nil {
			return nil, err
		}
		for _, node := range nodes {
			out = append(out, IssueComment{ID: node.ID, Body: node.Body})
		}
		if len(nodes) < perPage {
			break
		}
	}
	return out, nil
}

// CreateIssueComment posts a new comment on the pull request conversation.
func (c *Client) CreateIssueComment(ctx context.Context, number int, body string) (*IssueComment, error) {
	if number <= 0 {
		return nil, fmt.Errorf("pull request number must be positive")
	}
	var node commentNode
	path := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", c.owner, c.name, number)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"body": body}, &node); err != nil {
		return nil, err
	}
	return &IssueComment{ID: node.ID, Body: node.Body}, nil
}

// UpdateIssueComment replaces the body of an existing comment.
func (c *Client) UpdateIssueComment(ctx context.Context, commentID int64, body string) error {
	path := fmt.Sprintf("/repos/%s/%s/issues/comments/%d", c.owner, c.name, commentID)
	return c.doJSON(ctx, http.MethodPatch, path, map[string]string{"body": body}, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.logger != nil {
		c.logger.Debug("github api request", "method", method, "path", path, "repo", c.repo)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("github api %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode github api response: %w", err)
	}
	return nil
}

// APIError is a non-2xx GitHub API response.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Body is the raw response body, usually a JSON error document.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api error: %d - %s", e.StatusCode, e.Body)
}

package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/worklink-ci/worklinkctl/internal/githubapi"
)

// Status comment markers. The marker substring locates the comment across
// runs so it is updated in place instead of duplicated.
const (
	// PRFailureMarker opens the pull request failure comment.
	PRFailureMarker = ":x: This pull request is not linked to a work item."
	// PRSuccessMarker opens the pull request success comment.
	PRSuccessMarker = ":white_check_mark: This pull request is now linked to a work item."
	// commitFailureMarker opens the commit failure comment.
	commitFailureMarker = ":x: There is at least one commit"
)

// CommentUpserter maintains at most one status comment per marker per pull
// request. Comments are never deleted, only created or rewritten.
type CommentUpserter struct {
	Comments CommentsAPI
	// RunURL links the comment footer to the triggering workflow run.
	RunURL string
	Logger *slog.Logger
	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

// Upsert updates the first existing comment containing marker, or creates a
// new comment when none matches. The run provenance footer is appended to
// every body.
func (u *CommentUpserter) Upsert(ctx context.Context, pullNumber int, body, marker string) error {
	comments, err := u.Comments.ListIssueComments(ctx, pullNumber)
	if err != nil {
		return fmt.Errorf("list pull request comments: %w", err)
	}

	combined := body + u.footer()
	for _, c := range comments {
		if strings.Contains(c.Body, marker) {
			u.logger().Debug("updating existing status comment", "comment_id", c.ID)
			if err := u.Comments.UpdateIssueComment(ctx, c.ID, combined); err != nil {
				return fmt.Errorf("update comment %d: %w", c.ID, err)
			}
			return nil
		}
	}

	u.logger().Debug("posting new status comment", "pr", pullNumber)
	if _, err := u.Comments.CreateIssueComment(ctx, pullNumber, combined); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// FindMarked returns the first comment (API order) containing marker, or nil.
func (u *CommentUpserter) FindMarked(ctx context.Context, pullNumber int, marker string) (*githubapi.IssueComment, error) {
	comments, err := u.Comments.ListIssueComments(ctx, pullNumber)
	if err != nil {
		return nil, fmt.Errorf("list pull request comments: %w", err)
	}
	for _, c := range comments {
		if strings.Contains(c.Body, marker) {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

// Rewrite replaces an existing comment's body in place, footer appended.
func (u *CommentUpserter) Rewrite(ctx context.Context, commentID int64, body string) error {
	if err := u.Comments.UpdateIssueComment(ctx, commentID, body+u.footer()); err != nil {
		return fmt.Errorf("update comment %d: %w", commentID, err)
	}
	return nil
}

// footer renders the run provenance line, timestamp truncated to seconds.
func (u *CommentUpserter) footer() string {
	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	ts := now().UTC().Format("2006-01-02 15:04:05")
	return fmt.Sprintf("\n\n[View workflow run for details](%s) _(last ran: %s)_", u.RunURL, ts)
}

func (u *CommentUpserter) logger() *slog.Logger {
	if u.Logger != nil {
		return u.Logger
	}
	return slog.Default()
}

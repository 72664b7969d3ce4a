package compliance

import (
	"context"
	"fmt"
	"log/slog"
)

// PRResult is the terminal state of a pull request compliance run.
type PRResult int

const (
	// PRCompliant means the title or body references a work item.
	PRCompliant PRResult = iota
	// PRNonCompliant means no reference was found.
	PRNonCompliant
)

// PRCheckerConfig carries the policy toggles for the title/body check.
type PRCheckerConfig struct {
	// CommentOnFailure posts or updates the status comment on failure.
	CommentOnFailure bool
}

// PRChecker validates that the pull request title or body references a work
// item. This check never links work items; linking is commit-driven.
type PRChecker struct {
	PullRequests PullRequestAPI
	Comments     *CommentUpserter
	Reporter     Reporter
	Logger       *slog.Logger
	Config       PRCheckerConfig
}

// Run fetches the pull request and checks title and body for a reference.
// On success an earlier failure comment, if present, is rewritten in place
// to the success message; nothing is posted when no failure comment exists.
// The returned references are deduplicated by raw token.
func (p *PRChecker) Run(ctx context.Context, pullNumber int) (PRResult, []Reference, error) {
	logger := p.logger()

	pr, err := p.PullRequests.GetPullRequest(ctx, pullNumber)
	if err != nil {
		return PRCompliant, nil, fmt.Errorf("get pull request #%d: %w", pullNumber, err)
	}

	if !HasReference(pr.Title + " " + pr.Body) {
		logger.Info("pull request not linked to a work item", "pr", pullNumber)
		msg := fmt.Sprintf("The pull request #%d is not linked to any work item(s)", pullNumber)
		p.Reporter.Error("Pull Request not linked to work item(s): " + msg)
		if p.Config.CommentOnFailure && p.Comments != nil {
			body := PRFailureMarker + " Please update the title or body to include a work item" +
				" and re-run the failed job to continue. Any new commits to the pull request" +
				" will also re-run the job."
			if err := p.Comments.Upsert(ctx, pullNumber, body, PRFailureMarker); err != nil {
				logger.Warn("failed to upsert failure comment", "error", err)
			}
		}
		p.Reporter.SetFailed(msg)
		return PRNonCompliant, nil, nil
	}

	logger.Info("pull request linked to work item", "pr", pullNumber)
	if p.Comments != nil {
		existing, err := p.Comments.FindMarked(ctx, pullNumber, PRFailureMarker)
		if err != nil {
			logger.Warn("failed to look up status comment", "error", err)
		} else if existing != nil {
			logger.Info("updating failure comment to success", "comment_id", existing.ID)
			if err := p.Comments.Rewrite(ctx, existing.ID, PRSuccessMarker); err != nil {
				logger.Warn("failed to update status comment", "error", err)
			}
		}
	}

	refs := dedupeByRaw(FindReferences(pr.Body + " " + pr.Title))
	for _, ref := range refs {
		logger.Info("pull request linked to work item number", "work_item", ref.ID)
	}
	return PRCompliant, refs, nil
}

func (p *PRChecker) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

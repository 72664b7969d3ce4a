package compliance

import (
	"context"
	"fmt"
	"log/slog"
)

// WorkItemLinker is the linking collaborator the commit checker drives.
type WorkItemLinker interface {
	Link(ctx context.Context, req LinkRequest) (LinkOutcome, error)
}

// CommitResult is the terminal state of a commit compliance run.
type CommitResult int

const (
	// AllCommitsCompliant means the loop ran to completion.
	AllCommitsCompliant CommitResult = iota
	// CommitNonCompliant means a commit without a reference failed the run.
	CommitNonCompliant
)

// CommitCheckerConfig carries the policy toggles and link parameters for a
// commit compliance run.
type CommitCheckerConfig struct {
	// FailOnMissing fails the run at the first commit without a reference.
	FailOnMissing bool
	// LinkCommits attaches every referenced work item to the pull request.
	LinkCommits bool
	// CommentOnFailure posts or updates the status comment on failure.
	CommentOnFailure bool
	// Organization and Token are the Azure DevOps link credentials.
	Organization string
	Token        string
	// Owner, Repo and ServerURL identify the GitHub side of the link.
	Owner     string
	Repo      string
	ServerURL string
}

// CommitChecker validates every commit in a pull request against the
// work item reference convention.
type CommitChecker struct {
	PullRequests PullRequestAPI
	Linker       WorkItemLinker
	Comments     *CommentUpserter
	Reporter     Reporter
	Logger       *slog.Logger
	Config       CommitCheckerConfig
}

// Run walks the commits in API order. The first commit without a reference
// fails the run when FailOnMissing is set and later commits are not
// evaluated. Linker failures are reported but do not stop the loop; whether
// they should also flag the commit is deliberately left as-is.
func (c *CommitChecker) Run(ctx context.Context, pullNumber int) (CommitResult, error) {
	logger := c.logger()

	commits, err := c.PullRequests.ListPullRequestCommits(ctx, pullNumber)
	if err != nil {
		return AllCommitsCompliant, fmt.Errorf("list commits for pull request #%d: %w", pullNumber, err)
	}

	for _, commit := range commits {
		shortSHA := commit.SHA
		if len(shortSHA) > 7 {
			shortSHA = shortSHA[:7]
		}
		logger.Info("validating commit", "sha", commit.SHA)

		refs := FindReferences(commit.Message)
		if len(refs) == 0 {
			if !c.Config.FailOnMissing {
				logger.Debug("commit has no work item reference, continuing", "sha", shortSHA)
				continue
			}
			msg := fmt.Sprintf("There is at least one commit (%s) in pull request #%d that is not linked to a work item", shortSHA, pullNumber)
			c.Reporter.Error("Commit(s) not linked to work items: " + msg)
			if c.Config.CommentOnFailure && c.Comments != nil {
				body := fmt.Sprintf("%s (%s) in pull request #%d that is not linked to a work item."+
					" Please update the commit message to include a work item reference (AB#xxx)"+
					" and re-run the failed job to continue. Any new commits to the pull request"+
					" will also re-run the job.", commitFailureMarker, shortSHA, pullNumber)
				if err := c.Comments.Upsert(ctx, pullNumber, body, commitFailureMarker); err != nil {
					logger.Warn("failed to upsert failure comment", "error", err)
				}
			}
			c.Reporter.SetFailed(msg)
			return CommitNonCompliant, nil
		}

		logger.Debug("commit references work items", "sha", shortSHA, "count", len(refs))
		if !c.Config.LinkCommits || c.Linker == nil {
			continue
		}
		// Every occurrence triggers its own link attempt; the add is
		// idempotent so duplicates within a commit are harmless.
		for _, ref := range refs {
			logger.Info("linking work item to pull request", "work_item", ref.ID, "pr", pullNumber)
			outcome, err := c.Linker.Link(ctx, LinkRequest{
				Organization: c.Config.Organization,
				Token:        c.Config.Token,
				WorkItemID:   ref.ID,
				Owner:        c.Config.Owner,
				Repo:         c.Config.Repo,
				PullNumber:   pullNumber,
				ServerURL:    c.Config.ServerURL,
			})
			if err != nil {
				c.Reporter.SetFailed(err.Error())
				continue
			}
			if outcome == LinkExists {
				logger.Debug("work item already linked", "work_item", ref.ID)
			} else {
				logger.Info("work item linked", "work_item", ref.ID)
			}
		}
	}
	return AllCommitsCompliant, nil
}

func (c *CommitChecker) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

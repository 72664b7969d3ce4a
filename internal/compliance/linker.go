package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/worklink-ci/worklinkctl/internal/azdevops"
)

const (
	relArtifactLink          = "ArtifactLink"
	relNameGitHubPullRequest = "GitHub Pull Request"
)

// LinkRequest fully determines one link attempt: the data provider query
// and the resulting artifact URL are derived from these fields alone.
type LinkRequest struct {
	// Organization is the Azure DevOps organization name.
	Organization string
	// Token is the personal access token used for both calls.
	Token string
	// WorkItemID is the work item to attach the link to.
	WorkItemID int
	// Owner and Repo identify the GitHub repository.
	Owner string
	Repo  string
	// PullNumber is the pull request to link.
	PullNumber int
	// ServerURL is the GitHub host, e.g. https://github.com.
	ServerURL string
}

// LinkOutcome is the result of a successful link attempt.
type LinkOutcome int

const (
	// LinkCreated means a new relation was added to the work item.
	LinkCreated LinkOutcome = iota
	// LinkExists means the relation was already present. Repeated CI runs
	// replay the same link attempts, so this counts as success.
	LinkExists
)

// Linker attaches GitHub pull request artifact links to work items.
type Linker struct {
	Connect Connector
	Logger  *slog.Logger
}

// Link resolves the repository's internal id and adds an artifact link for
// the pull request to the work item. Every attempt re-resolves the id; no
// caching across commits or runs.
func (l *Linker) Link(ctx context.Context, req LinkRequest) (LinkOutcome, error) {
	logger := l.logger().With("work_item", req.WorkItemID, "pr", req.PullNumber)

	logger.Info("initializing azure devops connection")
	api, err := l.Connect(ctx, req.Organization, req.Token)
	if err != nil {
		return 0, NewFailure(KindConnection, "failed connection to azure devops", err)
	}

	prURL := fmt.Sprintf("%s/%s/%s/pull/%d", strings.TrimSuffix(req.ServerURL, "/"), req.Owner, req.Repo, req.PullNumber)
	logger.Debug("resolving internal repo id", "pr_url", prURL)
	repoID, err := api.ResolveRepoID(ctx, req.WorkItemID, prURL)
	if err != nil {
		var apiErr *azdevops.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return 0, NewFailure(KindAuthorization, "missing authorization (linking pull requests requires full access for the PAT)", err)
		}
		return 0, NewFailure(KindResolution, "failed to retrieve internal repo id", err)
	}
	if repoID == "" {
		return 0, NewFailure(KindResolution, "internal repo id could not be resolved", nil)
	}
	logger.Debug("resolved internal repo id", "repo_internal_id", repoID)

	// The %2F between repo id and PR number is literal in the artifact URI.
	artifactURL := fmt.Sprintf("vstfs:///GitHub/PullRequest/%s%%2F%d", repoID, req.PullNumber)
	rel := azdevops.Relation{
		Rel: relArtifactLink,
		URL: artifactURL,
		Attributes: map[string]any{
			"name":    relNameGitHubPullRequest,
			"comment": fmt.Sprintf("Pull Request %d", req.PullNumber),
		},
	}

	if _, err := api.AddRelation(ctx, req.WorkItemID, rel); err != nil {
		if isRelationExists(err) {
			logger.Info("artifact link already exists")
			return LinkExists, nil
		}
		return 0, NewFailure(KindLinkCreation,
			fmt.Sprintf("failed to link work item %d to pull request %d", req.WorkItemID, req.PullNumber), err)
	}
	logger.Info("artifact link created", "artifact_url", artifactURL)
	return LinkCreated, nil
}

func (l *Linker) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// isRelationExists is the single place duplicate-relation responses are
// recognized. The service exception type key is checked first; the message
// substring is the fallback when no structured signal is present.
func isRelationExists(err error) bool {
	var apiErr *azdevops.APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.TypeKey, "RelationAlreadyExists") {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "already exists")
}

package compliance

import (
	"context"

	"github.com/worklink-ci/worklinkctl/internal/azdevops"
	"github.com/worklink-ci/worklinkctl/internal/githubapi"
)

// PullRequestAPI is the slice of the source hosting API the checkers read.
type PullRequestAPI interface {
	GetPullRequest(ctx context.Context, number int) (*githubapi.PullRequest, error)
	ListPullRequestCommits(ctx context.Context, number int) ([]githubapi.Commit, error)
}

// CommentsAPI is the comment surface used for status comments.
type CommentsAPI interface {
	ListIssueComments(ctx context.Context, number int) ([]githubapi.IssueComment, error)
	CreateIssueComment(ctx context.Context, number int, body string) (*githubapi.IssueComment, error)
	UpdateIssueComment(ctx context.Context, commentID int64, body string) error
}

// WorkItemAPI is the work item tracking surface the linker and validator use.
type WorkItemAPI interface {
	GetWorkItem(ctx context.Context, id int) (*azdevops.WorkItem, error)
	AddRelation(ctx context.Context, id int, rel azdevops.Relation) (*azdevops.WorkItem, error)
	ResolveRepoID(ctx context.Context, workItemID int, prURL string) (string, error)
}

// Connector bootstraps a work item client for an organization and credential.
// A fresh client is created per invocation; nothing is pooled across runs.
type Connector func(ctx context.Context, org, token string) (WorkItemAPI, error)

// Reporter is the CI failure channel. Error emits an annotation without
// failing the run; SetFailed additionally marks the run as failed.
type Reporter interface {
	Error(msg string)
	SetFailed(msg string)
}

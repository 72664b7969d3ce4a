package compliance

import (
	"context"
	"io"
	"log/slog"

	"github.com/worklink-ci/worklinkctl/internal/azdevops"
	"github.com/worklink-ci/worklinkctl/internal/githubapi"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePullRequestAPI struct {
	pr         *githubapi.PullRequest
	prErr      error
	commits    []githubapi.Commit
	commitsErr error
}

func (f *fakePullRequestAPI) GetPullRequest(_ context.Context, _ int) (*githubapi.PullRequest, error) {
	return f.pr, f.prErr
}

func (f *fakePullRequestAPI) ListPullRequestCommits(_ context.Context, _ int) ([]githubapi.Commit, error) {
	return f.commits, f.commitsErr
}

type createdComment struct {
	number int
	body   string
}

type updatedComment struct {
	id   int64
	body string
}

type fakeCommentsAPI struct {
	comments  []githubapi.IssueComment
	listErr   error
	createErr error
	updateErr error
	created   []createdComment
	updated   []updatedComment
}

func (f *fakeCommentsAPI) ListIssueComments(_ context.Context, _ int) ([]githubapi.IssueComment, error) {
	return f.comments, f.listErr
}

func (f *fakeCommentsAPI) CreateIssueComment(_ context.Context, number int, body string) (*githubapi.IssueComment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, createdComment{number: number, body: body})
	return &githubapi.IssueComment{ID: int64(100 + len(f.created)), Body: body}, nil
}

func (f *fakeCommentsAPI) UpdateIssueComment(_ context.Context, commentID int64, body string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, updatedComment{id: commentID, body: body})
	return nil
}

type fakeWorkItemAPI struct {
	workItem    *azdevops.WorkItem
	getErr      error
	relations   []azdevops.Relation
	addErr      error
	repoID      string
	resolveErr  error
	resolvedURL string
}

func (f *fakeWorkItemAPI) GetWorkItem(_ context.Context, _ int) (*azdevops.WorkItem, error) {
	return f.workItem, f.getErr
}

func (f *fakeWorkItemAPI) AddRelation(_ context.Context, _ int, rel azdevops.Relation) (*azdevops.WorkItem, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.relations = append(f.relations, rel)
	return f.workItem, nil
}

func (f *fakeWorkItemAPI) ResolveRepoID(_ context.Context, _ int, prURL string) (string, error) {
	f.resolvedURL = prURL
	return f.repoID, f.resolveErr
}

func connectorFor(api WorkItemAPI, err error) Connector {
	return func(_ context.Context, _, _ string) (WorkItemAPI, error) {
		if err != nil {
			return nil, err
		}
		return api, nil
	}
}

type fakeReporter struct {
	errors   []string
	failures []string
}

func (f *fakeReporter) Error(msg string) {
	f.errors = append(f.errors, msg)
}

func (f *fakeReporter) SetFailed(msg string) {
	f.errors = append(f.errors, msg)
	f.failures = append(f.failures, msg)
}

type fakeLinker struct {
	requests []LinkRequest
	outcome  LinkOutcome
	err      error
}

func (f *fakeLinker) Link(_ context.Context, req LinkRequest) (LinkOutcome, error) {
	f.requests = append(f.requests, req)
	return f.outcome, f.err
}

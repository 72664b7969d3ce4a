package compliance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklink-ci/worklinkctl/internal/azdevops"
)

func linkRequest() LinkRequest {
	return LinkRequest{
		Organization: "contoso",
		Token:        "pat",
		WorkItemID:   123,
		Owner:        "octo",
		Repo:         "widgets",
		PullNumber:   42,
		ServerURL:    "https://github.com",
	}
}

func TestLinkerCreatesRelation(t *testing.T) {
	api := &fakeWorkItemAPI{repoID: "repo-guid"}
	linker := &Linker{Connect: connectorFor(api, nil), Logger: discardLogger()}

	outcome, err := linker.Link(context.Background(), linkRequest())
	require.NoError(t, err)
	assert.Equal(t, LinkCreated, outcome)

	assert.Equal(t, "https://github.com/octo/widgets/pull/42", api.resolvedURL)
	require.Len(t, api.relations, 1)
	rel := api.relations[0]
	assert.Equal(t, "ArtifactLink", rel.Rel)
	assert.Equal(t, "vstfs:///GitHub/PullRequest/repo-guid%2F42", rel.URL)
	assert.Equal(t, "GitHub Pull Request", rel.Attributes["name"])
	assert.Equal(t, "Pull Request 42", rel.Attributes["comment"])
}

func TestLinkerConnectFailure(t *testing.T) {
	linker := &Linker{
		Connect: connectorFor(nil, errors.New("dial tcp: timeout")),
		Logger:  discardLogger(),
	}

	_, err := linker.Link(context.Background(), linkRequest())
	require.Error(t, err)
	assert.Equal(t, KindConnection, KindOf(err))
}

func TestLinkerUnauthorizedResolution(t *testing.T) {
	api := &fakeWorkItemAPI{
		resolveErr: &azdevops.APIError{StatusCode: http.StatusUnauthorized, Message: "access denied"},
	}
	linker := &Linker{Connect: connectorFor(api, nil), Logger: discardLogger()}

	_, err := linker.Link(context.Background(), linkRequest())
	require.Error(t, err)
	assert.Equal(t, KindAuthorization, KindOf(err))
	assert.Contains(t, err.Error(), "full access")
}

func TestLinkerResolutionFailure(t *testing.T) {
	api := &fakeWorkItemAPI{resolveErr: errors.New("boom")}
	linker := &Linker{Connect: connectorFor(api, nil), Logger: discardLogger()}

	_, err := linker.Link(context.Background(), linkRequest())
	require.Error(t, err)
	assert.Equal(t, KindResolution, KindOf(err))
}

func TestLinkerEmptyRepoID(t *testing.T) {
	api := &fakeWorkItemAPI{repoID: ""}
	linker := &Linker{Connect: connectorFor(api, nil), Logger: discardLogger()}

	_, err := linker.Link(context.Background(), linkRequest())
	require.Error(t, err)
	assert.Equal(t, KindResolution, KindOf(err))
	assert.Empty(t, api.relations)
}

func TestLinkerRelationAlreadyExistsTypeKey(t *testing.T) {
	api := &fakeWorkItemAPI{
		repoID: "repo-guid",
		addErr: &azdevops.APIError{
			StatusCode: http.StatusBadRequest,
			TypeKey:    "WorkItemRelationAlreadyExistsException",
			Message:    "Relation already exists",
		},
	}
	linker := &Linker{Connect: connectorFor(api, nil), Logger: discardLogger()}

	outcome, err := linker.Link(context.Background(), linkRequest())
	require.NoError(t, err)
	assert.Equal(t, LinkExists, outcome)
}

func TestLinkerRelationAlreadyExistsMessage(t *testing.T) {
	api := &fakeWorkItemAPI{
		repoID: "repo-guid",
		addErr: fmt.Errorf("patch work item: relation already exists on work item"),
	}
	linker := &Linker{Connect: connectorFor(api, nil), Logger: discardLogger()}

	outcome, err := linker.Link(context.Background(), linkRequest())
	require.NoError(t, err)
	assert.Equal(t, LinkExists, outcome)
}

func TestLinkerAddRelationFailure(t *testing.T) {
	api := &fakeWorkItemAPI{
		repoID: "repo-guid",
		addErr: &azdevops.APIError{StatusCode: http.StatusBadRequest, Message: "invalid patch"},
	}
	linker := &Linker{Connect: connectorFor(api, nil), Logger: discardLogger()}

	_, err := linker.Link(context.Background(), linkRequest())
	require.Error(t, err)
	assert.Equal(t, KindLinkCreation, KindOf(err))
	assert.Contains(t, err.Error(), "work item 123")
	assert.Contains(t, err.Error(), "pull request 42")
}

package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(nil, srv.URL, "test-token", "octo/widgets")
	require.NoError(t, err)
	return c
}

func TestSplitRepo(t *testing.T) {
	owner, name, err := SplitRepo("octo/widgets")
	require.NoError(t, err)
	assert.Equal(t, "octo", owner)
	assert.Equal(t, "widgets", name)

	for _, slug := range []string{"", "octo", "octo/", "/widgets", "a/b/c"} {
		_, _, err := SplitRepo(slug)
		assert.Error(t, err, "slug %q", slug)
	}
}

func TestNewClientRejectsBadSlug(t *testing.T) {
	_, err := NewClient(nil, "", "token", "not-a-slug")
	require.Error(t, err)
}

func TestGetPullRequest(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/octo/widgets/pulls/42", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
		fmt.Fprint(w, `{"number": 42, "title": "Add widget AB#1", "body": "details"}`)
	}))

	pr, err := c.GetPullRequest(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, pr.Number)
	assert.Equal(t, "Add widget AB#1", pr.Title)
	assert.Equal(t, "details", pr.Body)
}

func TestGetPullRequestRejectsNonPositive(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	_, err := c.GetPullRequest(context.Background(), 0)
	require.Error(t, err)
}

func TestListPullRequestCommitsPaginates(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/widgets/pulls/42/commits", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		page := r.URL.Query().Get("page")
		var nodes []map[string]any
		count := 100
		if page == "2" {
			count = 3
		}
		for i := 0; i < count; i++ {
			nodes = append(nodes, map[string]any{
				"sha":    fmt.Sprintf("sha-%s-%d", page, i),
				"commit": map[string]any{"message": fmt.Sprintf("msg %d AB#%d", i, i)},
			})
		}
		_ = json.NewEncoder(w).Encode(nodes)
	}))

	commits, err := c.ListPullRequestCommits(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, commits, 103)
	assert.Equal(t, "sha-1-0", commits[0].SHA)
	assert.Equal(t, "msg 0 AB#0", commits[0].Message)
	assert.Equal(t, "sha-2-2", commits[102].SHA)
}

func TestListIssueComments(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octo/widgets/issues/42/comments", r.URL.Path)
		fmt.Fprint(w, `[{"id": 11, "body": "first"}, {"id": 12, "body": "second"}]`)
	}))

	comments, err := c.ListIssueComments(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, int64(11), comments[0].ID)
	assert.Equal(t, "second", comments[1].Body)
}

func TestCreateIssueComment(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/octo/widgets/issues/42/comments", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "hello", payload["body"])

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 99, "body": "hello"}`)
	}))

	comment, err := c.CreateIssueComment(context.Background(), 42, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(99), comment.ID)
}

func TestUpdateIssueComment(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/repos/octo/widgets/issues/comments/99", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "updated", payload["body"])
		fmt.Fprint(w, `{"id": 99, "body": "updated"}`)
	}))

	err := c.UpdateIssueComment(context.Background(), 99, "updated")
	require.NoError(t, err)
}

func TestAPIErrorOnNon2xx(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "Resource not accessible by integration"}`)
	}))

	_, err := c.GetPullRequest(context.Background(), 42)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "Resource not accessible")
	assert.Contains(t, apiErr.Error(), "github api error: 403")
}

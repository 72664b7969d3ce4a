// Package azdevops provides a minimal Azure DevOps work item tracking
// client: work item reads, relation patches and contribution data-provider
// queries against one organization.
package azdevops

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
	defaultBaseURL         = "https://dev.azure.com"
	apiVersion             = "7.1"
	dataProviderAPIVersion = "7.1-preview.1"

	// githubLinkProviderID is the contribution that resolves GitHub
	// repositories to their internal Azure DevOps identifiers.
	githubLinkProviderID = "ms.vss-work-web.github-link-data-provider"

	contentTypeJSON      = "application/json"
	contentTypeJSONPatch = "application/json-patch+json"
)

// Options configures Connect.
type Options struct {
	// Logger receives debug output; nil disables it.
	Logger *slog.Logger
	// BaseURL overrides the service host; empty means dev.azure.com.
	BaseURL string
	// HTTPClient overrides the transport; nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Client talks to one Azure DevOps organization with a personal access token.
type Client struct {
	logger  *slog.Logger
	httpc   *http.Client
	baseURL string
	org     string
	token   string
}

// Connect verifies the organization is reachable with the given credential
// and returns a client. The connectionData probe is the first network call,
// so bad credentials and unreachable hosts surface here, not later.
func Connect(ctx context.Context, org, token string, opts Options) (*Client, error) {
	org = strings.TrimSpace(org)
	if org == "" {
		return nil, fmt.Errorf("azure devops organization is empty")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("azure devops token is empty")
	}

	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}

	c := &Client{
		logger:  opts.Logger,
		httpc:   httpc,
		baseURL: baseURL,
		org:     org,
		token:   token,
	}

	url := fmt.Sprintf("%s/%s/_apis/connectionData?api-version=%s", c.baseURL, c.org, dataProviderAPIVersion)
	if err := c.do(ctx, http.MethodGet, url, "", nil, nil); err != nil {
		return nil, fmt.Errorf("connect to azure devops org %q: %w", org, err)
	}
	return c, nil
}

// GetWorkItem fetches a work item by its numeric id.
func (c *Client) GetWorkItem(ctx context.Context, id int) (*WorkItem, error) {
	if id <= 0 {
		return nil, fmt.Errorf("work item id must be positive")
	}
	url := fmt.Sprintf("%s/%s/_apis/wit/workitems/%d?api-version=%s", c.baseURL, c.org, id, apiVersion)
	var item WorkItem
	if err := c.do(ctx, http.MethodGet, url, "", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// patchOp is one JSON Patch operation of a work item update.
type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// AddRelation appends a relation to the work item, requesting relation
// expansion on the response.
func (c *Client) AddRelation(ctx context.Context, id int, rel Relation) (*WorkItem, error) {
	if id <= 0 {
		return nil, fmt.Errorf("work item id must be positive")
	}
	ops := []patchOp{{
		Op:    "add",
		Path:  "/relations/-",
		Value: rel,
	}}
	body, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("marshal patch document: %w", err)
	}

	url := fmt.Sprintf("%s/%s/_apis/wit/workitems/%d?api-version=%s&$expand=relations", c.baseURL, c.org, id, apiVersion)
	var item WorkItem
	if err := c.do(ctx, http.MethodPatch, url, contentTypeJSONPatch, body, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// dataProviderRequest is the contribution query envelope.
type dataProviderRequest struct {
	Context struct {
		Properties struct {
			WorkItemID int      `json:"workItemId"`
			URLs       []string `json:"urls"`
		} `json:"properties"`
	} `json:"context"`
	ContributionIDs []string `json:"contributionIds"`
}

type dataProviderResponse struct {
	Data map[string]struct {
		ResolvedLinkItems []struct {
			RepoInternalID string `json:"repoInternalId"`
		} `json:"resolvedLinkItems"`
	} `json:"data"`
}

// ResolveRepoID resolves the internal identifier Azure DevOps uses for the
// GitHub repository behind prURL, scoped to the given work item. The result
// may be empty when the provider cannot resolve the repository; callers
// decide how to treat that.
func (c *Client) ResolveRepoID(ctx context.Context, workItemID int, prURL string) (string, error) {
	var reqBody dataProviderRequest
	reqBody.Context.Properties.WorkItemID = workItemID
	reqBody.Context.Properties.URLs = []string{prURL}
	reqBody.ContributionIDs = []string{githubLinkProviderID}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal data provider query: %w", err)
	}

	url := fmt.Sprintf("%s/%s/_apis/Contribution/dataProviders/query?api-version=%s", c.baseURL, c.org, dataProviderAPIVersion)
	var resp dataProviderResponse
	if err := c.do(ctx, http.MethodPost, url, contentTypeJSON, body, &resp); err != nil {
		return "", err
	}

	provider, ok := resp.Data[githubLinkProviderID]
	if !ok || len(provider.ResolvedLinkItems) == 0 {
		return "", nil
	}
	return provider.ResolvedLinkItems[0].RepoInternalID, nil
}

// adoErrorEnvelope is the error document Azure DevOps returns for failures.
type adoErrorEnvelope struct {
	TypeKey string `json:"typeKey"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, url, contentType string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	// PAT auth uses Basic with an empty username and the token as password.
	req.SetBasicAuth("", c.token)
	req.Header.Set("Accept", contentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.logger != nil {
		c.logger.Debug("azure devops request", "method", method, "url", url)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("azure devops %s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope adoErrorEnvelope
		if json.Unmarshal(respBody, &envelope) == nil {
			apiErr.TypeKey = envelope.TypeKey
			apiErr.Message = envelope.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode azure devops response: %w", err)
	}
	return nil
}

// APIError is a structured non-2xx Azure DevOps response.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// TypeKey is the service exception type, e.g.
	// "WorkItemRelationAlreadyExistsException"; empty when the body had none.
	TypeKey string
	// Message is the service error message or the raw body.
	Message string
}

func (e *APIError) Error() string {
	if e.TypeKey != "" {
		return fmt.Sprintf("azure devops error: %d %s: %s", e.StatusCode, e.TypeKey, e.Message)
	}
	return fmt.Sprintf("azure devops error: %d: %s", e.StatusCode, e.Message)
}

// Package ghactions implements the GitHub Actions runner surface: workflow
// commands, step outputs and webhook event payload access.
package ghactions

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

// Write appends GitHub Actions outputs to the GITHUB_OUTPUT file when available.
func Write(values map[string]string) error {
	path := strings.TrimSpace(os.Getenv("GITHUB_OUTPUT"))
	if path == "" {
		return nil
	}
	if len(values) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(values))
	for k := range values {
		if strings.TrimSpace(k) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := sanitize(values[key])
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, value); err != nil {
			return err
		}
	}
	return nil
}

func sanitize(value string) string {
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, "\r", "%0D")
	value = strings.ReplaceAll(value, "\n", "%0A")
	return value
}

// CommandReporter emits workflow command annotations and records whether the
// run must fail. It is the single failure-signaling channel for the checks.
type CommandReporter struct {
	w        io.Writer
	logger   *slog.Logger
	failed   bool
	failures []string
}

// NewReporter constructs a CommandReporter writing workflow commands to w.
// The runner only interprets commands written to stdout.
func NewReporter(w io.Writer, logger *slog.Logger) *CommandReporter {
	if w == nil {
		w = os.Stdout
	}
	return &CommandReporter{w: w, logger: logger}
}

// Error emits an error annotation without failing the run.
func (r *CommandReporter) Error(msg string) {
	fmt.Fprintf(r.w, "::error::%s\n", sanitize(msg))
	if r.logger != nil {
		r.logger.Error(msg)
	}
}

// SetFailed emits an error annotation and marks the run as failed.
func (r *CommandReporter) SetFailed(msg string) {
	r.Error(msg)
	r.failed = true
	r.failures = append(r.failures, msg)
}

// Failed reports whether SetFailed was called during this run.
func (r *CommandReporter) Failed() bool {
	return r.failed
}

// Failures returns the recorded failure messages in order.
func (r *CommandReporter) Failures() []string {
	return r.failures
}

// Event is the subset of the webhook payload the checks need.
type Event struct {
	PullRequest *struct {
		Number int `json:"number"`
	} `json:"pull_request"`
	Repository *struct {
		HTMLURL string `json:"html_url"`
	} `json:"repository"`
}

// ReadEvent parses the event payload file the runner points GITHUB_EVENT_PATH at.
func ReadEvent(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event payload %q: %w", path, err)
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode event payload %q: %w", path, err)
	}
	return &event, nil
}

// PullNumber returns the pull request number, or 0 when the event has none.
func (e *Event) PullNumber() int {
	if e == nil || e.PullRequest == nil {
		return 0
	}
	return e.PullRequest.Number
}

// RepoHTMLURL returns the repository web URL, or "" when the event has none.
func (e *Event) RepoHTMLURL() string {
	if e == nil || e.Repository == nil {
		return ""
	}
	return strings.TrimSpace(e.Repository.HTMLURL)
}

// RunURL builds the link to the triggering workflow run.
func RunURL(repoHTMLURL string, runID int64) string {
	return fmt.Sprintf("%s/actions/runs/%d", strings.TrimSuffix(repoHTMLURL, "/"), runID)
}

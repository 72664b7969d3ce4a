package ghactions

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAppendsSortedOutputs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output")
	require.NoError(t, os.WriteFile(path, []byte("existing=1\n"), 0o600))
	t.Setenv("GITHUB_OUTPUT", path)

	err := Write(map[string]string{
		"pr_compliant":      "true",
		"commits_compliant": "false",
		"work_items":        "1,2",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing=1\ncommits_compliant=false\npr_compliant=true\nwork_items=1,2\n", string(data))
}

func TestWriteSanitizesNewlines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	t.Setenv("GITHUB_OUTPUT", path)

	err := Write(map[string]string{"message": "line one\r\nline two"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "message=line one%0D%0Aline two\n", string(data))
}

func TestWriteNoopWithoutOutputFile(t *testing.T) {
	t.Setenv("GITHUB_OUTPUT", "")
	assert.NoError(t, Write(map[string]string{"key": "value"}))
}

func TestReporterError(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, nil)

	r.Error("something broke")
	assert.Equal(t, "::error::something broke\n", buf.String())
	assert.False(t, r.Failed())
	assert.Empty(t, r.Failures())
}

func TestReporterSetFailed(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, nil)

	r.SetFailed("first failure")
	r.SetFailed("second failure")

	assert.True(t, r.Failed())
	assert.Equal(t, []string{"first failure", "second failure"}, r.Failures())
	assert.Equal(t, "::error::first failure\n::error::second failure\n", buf.String())
}

func TestReporterSanitizesAnnotations(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, nil)

	r.Error("line one\nline two")
	assert.Equal(t, "::error::line one%0Aline two\n", buf.String())
}

func TestReadEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.json")
	payload := `{"pull_request": {"number": 42}, "repository": {"html_url": "https://github.com/octo/widgets"}}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	event, err := ReadEvent(path)
	require.NoError(t, err)
	assert.Equal(t, 42, event.PullNumber())
	assert.Equal(t, "https://github.com/octo/widgets", event.RepoHTMLURL())
}

func TestReadEventMissingFile(t *testing.T) {
	_, err := ReadEvent(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestEventWithoutPullRequest(t *testing.T) {
	event := &Event{}
	assert.Equal(t, 0, event.PullNumber())
	assert.Equal(t, "", event.RepoHTMLURL())

	var nilEvent *Event
	assert.Equal(t, 0, nilEvent.PullNumber())
	assert.Equal(t, "", nilEvent.RepoHTMLURL())
}

func TestRunURL(t *testing.T) {
	assert.Equal(t, "https://github.com/octo/widgets/actions/runs/7",
		RunURL("https://github.com/octo/widgets", 7))
	assert.Equal(t, "https://github.com/octo/widgets/actions/runs/7",
		RunURL("https://github.com/octo/widgets/", 7))
}

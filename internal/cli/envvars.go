package cli

import (
	"os"
	"strings"

	envparse "github.com/caarlos0/env/v11"
)

// actionEnv captures the action inputs GitHub Actions exposes as INPUT_* vars.
type actionEnv struct {
	// CheckPullRequest toggles the PR check from INPUT_CHECK-PULL-REQUEST.
	CheckPullRequest bool `env:"INPUT_CHECK-PULL-REQUEST"`
	// CheckCommits toggles the commit check from INPUT_CHECK-COMMITS.
	CheckCommits bool `env:"INPUT_CHECK-COMMITS"`
	// FailOnMissingCommitLink fails on unreferenced commits from INPUT_FAIL-IF-MISSING-WORKITEM-COMMIT-LINK.
	FailOnMissingCommitLink bool `env:"INPUT_FAIL-IF-MISSING-WORKITEM-COMMIT-LINK"`
	// LinkCommits links referenced work items from INPUT_LINK-COMMITS-TO-PULL-REQUEST.
	LinkCommits bool `env:"INPUT_LINK-COMMITS-TO-PULL-REQUEST"`
	// AzureDevOpsToken is the PAT from INPUT_AZURE-DEVOPS-TOKEN.
	AzureDevOpsToken string `env:"INPUT_AZURE-DEVOPS-TOKEN"`
	// AzureDevOpsOrganization is the org name from INPUT_AZURE-DEVOPS-ORGANIZATION.
	AzureDevOpsOrganization string `env:"INPUT_AZURE-DEVOPS-ORGANIZATION"`
	// GitHubToken is the repo token from INPUT_GITHUB-TOKEN.
	GitHubToken string `env:"INPUT_GITHUB-TOKEN"`
	// CommentOnFailure toggles status comments from INPUT_COMMENT-ON-FAILURE.
	CommentOnFailure bool `env:"INPUT_COMMENT-ON-FAILURE"`
	// GitHubAppID enables App auth from INPUT_GITHUB-APP-ID.
	GitHubAppID string `env:"INPUT_GITHUB-APP-ID"`
	// GitHubAppInstallationID selects the installation from INPUT_GITHUB-APP-INSTALLATION-ID.
	GitHubAppInstallationID string `env:"INPUT_GITHUB-APP-INSTALLATION-ID"`
	// GitHubAppPrivateKey is the PEM key from INPUT_GITHUB-APP-PRIVATE-KEY.
	GitHubAppPrivateKey string `env:"INPUT_GITHUB-APP-PRIVATE-KEY"`
}

// runnerEnv captures GITHUB_* context set by the Actions runner.
type runnerEnv struct {
	// Repository is the owner/name slug from GITHUB_REPOSITORY.
	Repository string `env:"GITHUB_REPOSITORY"`
	// ServerURL is the GitHub host from GITHUB_SERVER_URL.
	ServerURL string `env:"GITHUB_SERVER_URL" envDefault:"https://github.com"`
	// APIURL is the REST endpoint from GITHUB_API_URL.
	APIURL string `env:"GITHUB_API_URL" envDefault:"https://api.github.com"`
	// RunID identifies the workflow run from GITHUB_RUN_ID.
	RunID int64 `env:"GITHUB_RUN_ID"`
	// EventPath points at the webhook payload from GITHUB_EVENT_PATH.
	EventPath string `env:"GITHUB_EVENT_PATH"`
	// SentryDSN enables error forwarding from SENTRY_DSN.
	SentryDSN string `env:"SENTRY_DSN"`
}

// parseEnv fills target from the environment via caarlos0/env.
func parseEnv(target interface{}) error {
	return envparse.Parse(target)
}

// envPresent reports whether a non-empty env var exists.
func envPresent(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	return strings.TrimSpace(val) != ""
}

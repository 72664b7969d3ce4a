package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/worklink-ci/worklinkctl/internal/azdevops"
	"github.com/worklink-ci/worklinkctl/internal/compliance"
	"github.com/worklink-ci/worklinkctl/internal/config"
	"github.com/worklink-ci/worklinkctl/internal/ghactions"
	"github.com/worklink-ci/worklinkctl/internal/githubapi"
	"github.com/worklink-ci/worklinkctl/internal/logging"
)

// newCheckCommand creates "check", the full pull request compliance run: the
// commit check and the title/body check are independent branches controlled
// by the action inputs.
func newCheckCommand(opts *Options) *cobra.Command {
	var (
		pullNumber int
		repo       string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate pull request and commit work item references",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			inputs := actionEnv{}
			if err := parseEnv(&inputs); err != nil {
				return err
			}
			runner := runnerEnv{}
			if err := parseEnv(&runner); err != nil {
				return err
			}

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			applyConfigDefaults(&inputs, cfg)

			if !cmd.Flags().Changed("repo") && runner.Repository != "" {
				repo = runner.Repository
			}

			repoHTMLURL := ""
			if !cmd.Flags().Changed("pr") && runner.EventPath != "" {
				event, err := ghactions.ReadEvent(runner.EventPath)
				if err != nil {
					return err
				}
				pullNumber = event.PullNumber()
				repoHTMLURL = event.RepoHTMLURL()
			}
			if repoHTMLURL == "" && repo != "" {
				repoHTMLURL = strings.TrimSuffix(runner.ServerURL, "/") + "/" + repo
			}

			reporter := ghactions.NewReporter(os.Stdout, logger)
			if pullNumber <= 0 {
				reporter.SetFailed("this command can only be run on pull requests")
				return errChecksFailed(reporter)
			}

			token, err := resolveGitHubToken(cmd.Context(), &inputs, runner.APIURL)
			if err != nil {
				return err
			}
			gh, err := githubapi.NewClient(logger, runner.APIURL, token, repo)
			if err != nil {
				return err
			}

			upserter := &compliance.CommentUpserter{
				Comments: gh,
				RunURL:   ghactions.RunURL(repoHTMLURL, runner.RunID),
				Logger:   logger,
			}
			outputs := make(map[string]string)

			if inputs.CheckCommits {
				checker := &compliance.CommitChecker{
					PullRequests: gh,
					Linker:       &compliance.Linker{Connect: workItemConnector(logger), Logger: logger},
					Comments:     upserter,
					Reporter:     reporter,
					Logger:       logger,
					Config: compliance.CommitCheckerConfig{
						FailOnMissing:    inputs.FailOnMissingCommitLink,
						LinkCommits:      inputs.LinkCommits,
						CommentOnFailure: inputs.CommentOnFailure,
						Organization:     inputs.AzureDevOpsOrganization,
						Token:            inputs.AzureDevOpsToken,
						Owner:            gh.Owner(),
						Repo:             gh.Name(),
						ServerURL:        runner.ServerURL,
					},
				}
				res, err := checker.Run(cmd.Context(), pullNumber)
				if err != nil {
					return failUnknown(reporter, logger, err)
				}
				outputs["commits_compliant"] = strconv.FormatBool(res == compliance.AllCommitsCompliant)
			}

			if inputs.CheckPullRequest {
				checker := &compliance.PRChecker{
					PullRequests: gh,
					Comments:     upserter,
					Reporter:     reporter,
					Logger:       logger,
					Config: compliance.PRCheckerConfig{
						CommentOnFailure: inputs.CommentOnFailure,
					},
				}
				res, refs, err := checker.Run(cmd.Context(), pullNumber)
				if err != nil {
					return failUnknown(reporter, logger, err)
				}
				outputs["pr_compliant"] = strconv.FormatBool(res == compliance.PRCompliant)
				outputs["work_items"] = joinWorkItemIDs(refs)
			}

			if err := ghactions.Write(outputs); err != nil {
				return err
			}
			return errChecksFailed(reporter)
		},
	}

	cmd.Flags().IntVar(&pullNumber, "pr", 0, "Pull request number (defaults to the triggering event)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository slug owner/name (defaults to GITHUB_REPOSITORY)")

	return cmd
}

// applyConfigDefaults fills inputs the environment left unset from the
// repository configuration file. Only toggles that are still false and the
// organization participate; secrets never come from the file.
func applyConfigDefaults(inputs *actionEnv, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if !envPresent("INPUT_CHECK-PULL-REQUEST") && !inputs.CheckPullRequest {
		inputs.CheckPullRequest = cfg.Checks.PullRequest
	}
	if !envPresent("INPUT_CHECK-COMMITS") && !inputs.CheckCommits {
		inputs.CheckCommits = cfg.Checks.Commits
	}
	if !envPresent("INPUT_FAIL-IF-MISSING-WORKITEM-COMMIT-LINK") && !inputs.FailOnMissingCommitLink {
		inputs.FailOnMissingCommitLink = cfg.Checks.FailOnMissingCommitLink
	}
	if !envPresent("INPUT_LINK-COMMITS-TO-PULL-REQUEST") && !inputs.LinkCommits {
		inputs.LinkCommits = cfg.Checks.LinkCommitsToPullRequest
	}
	if !envPresent("INPUT_COMMENT-ON-FAILURE") && !inputs.CommentOnFailure {
		inputs.CommentOnFailure = cfg.Checks.CommentOnFailure
	}
	if inputs.AzureDevOpsOrganization == "" {
		inputs.AzureDevOpsOrganization = cfg.Organization
	}
}

// resolveGitHubToken prefers a pre-issued token; when absent and GitHub App
// credentials are configured, it mints an installation token instead.
func resolveGitHubToken(ctx context.Context, inputs *actionEnv, apiURL string) (string, error) {
	if inputs.GitHubToken != "" {
		return inputs.GitHubToken, nil
	}
	if inputs.GitHubAppID == "" {
		return "", fmt.Errorf("no github token provided (set github-token or the github-app inputs)")
	}
	app := &githubapi.AppAuth{
		AppID:          inputs.GitHubAppID,
		InstallationID: inputs.GitHubAppInstallationID,
		PrivateKey:     []byte(inputs.GitHubAppPrivateKey),
		APIURL:         apiURL,
	}
	return app.InstallationToken(ctx)
}

// workItemConnector adapts azdevops.Connect to the compliance.Connector shape.
func workItemConnector(logger *slog.Logger) compliance.Connector {
	return func(ctx context.Context, org, token string) (compliance.WorkItemAPI, error) {
		return azdevops.Connect(ctx, org, token, azdevops.Options{Logger: logger})
	}
}

// failUnknown reports an unexpected error on the failure channel and
// re-raises it so the host observes an unhandled condition.
func failUnknown(reporter *ghactions.CommandReporter, logger *slog.Logger, err error) error {
	reporter.SetFailed("Unknown error: " + err.Error())
	logging.CaptureException(err)
	logger.Error("unexpected failure", "error", err)
	return err
}

// errChecksFailed converts recorded reporter failures into the command error
// that drives the non-zero exit.
func errChecksFailed(reporter *ghactions.CommandReporter) error {
	if !reporter.Failed() {
		return nil
	}
	return errors.New("compliance checks failed: " + strings.Join(reporter.Failures(), "; "))
}

// joinWorkItemIDs renders distinct work item ids as a comma-separated list.
func joinWorkItemIDs(refs []compliance.Reference) string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, strconv.Itoa(ref.ID))
	}
	return strings.Join(ids, ",")
}

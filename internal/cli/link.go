package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/worklink-ci/worklinkctl/internal/compliance"
	"github.com/worklink-ci/worklinkctl/internal/config"
	"github.com/worklink-ci/worklinkctl/internal/ghactions"
	"github.com/worklink-ci/worklinkctl/internal/githubapi"
)

// newLinkCommand creates "link", which attaches a single work item to a pull
// request as an artifact link. An already existing link counts as success.
func newLinkCommand(opts *Options) *cobra.Command {
	var (
		workItemID int
		pullNumber int
		org        string
		repo       string
	)

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Link an Azure DevOps work item to a pull request",
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

			if !cmd.Flags().Changed("org") && inputs.AzureDevOpsOrganization != "" {
				org = inputs.AzureDevOpsOrganization
			}
			if !cmd.Flags().Changed("repo") && runner.Repository != "" {
				repo = runner.Repository
			}
			if !cmd.Flags().Changed("pr") && runner.EventPath != "" {
				event, err := ghactions.ReadEvent(runner.EventPath)
				if err != nil {
					return err
				}
				pullNumber = event.PullNumber()
			}

			if workItemID <= 0 {
				return errors.New("a positive --work-item id is required")
			}
			if pullNumber <= 0 {
				return errors.New("a positive --pr number is required")
			}
			owner, name, err := githubapi.SplitRepo(repo)
			if err != nil {
				return err
			}

			reporter := ghactions.NewReporter(os.Stdout, logger)
			linker := &compliance.Linker{Connect: workItemConnector(logger), Logger: logger}

			outcome, err := linker.Link(cmd.Context(), compliance.LinkRequest{
				Organization: org,
				Token:        inputs.AzureDevOpsToken,
				WorkItemID:   workItemID,
				Owner:        owner,
				Repo:         name,
				PullNumber:   pullNumber,
				ServerURL:    strings.TrimSuffix(runner.ServerURL, "/"),
			})
			if err != nil {
				var failure *compliance.Failure
				if errors.As(err, &failure) {
					reporter.SetFailed(failure.Error())
					return errChecksFailed(reporter)
				}
				return failUnknown(reporter, logger, err)
			}

			switch outcome {
			case compliance.LinkExists:
				logger.Info("work item already linked to pull request", "work_item", workItemID, "pr", pullNumber)
			default:
				logger.Info("work item linked to pull request", "work_item", workItemID, "pr", pullNumber)
			}

			return ghactions.Write(map[string]string{
				"link_outcome": linkOutcomeString(outcome),
				"work_items":   fmt.Sprintf("%d", workItemID),
			})
		},
	}

	cmd.Flags().IntVar(&workItemID, "work-item", 0, "Azure DevOps work item id")
	cmd.Flags().IntVar(&pullNumber, "pr", 0, "Pull request number (defaults to the triggering event)")
	cmd.Flags().StringVar(&org, "org", "", "Azure DevOps organization (defaults to the action input)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository slug owner/name (defaults to GITHUB_REPOSITORY)")

	return cmd
}

func linkOutcomeString(outcome compliance.LinkOutcome) string {
	if outcome == compliance.LinkExists {
		return "exists"
	}
	return "created"
}

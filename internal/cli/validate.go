package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/worklink-ci/worklinkctl/internal/compliance"
	"github.com/worklink-ci/worklinkctl/internal/config"
	"github.com/worklink-ci/worklinkctl/internal/ghactions"
)

// newValidateCommand creates "validate", which checks that a work item exists
// in the configured Azure DevOps organization.
func newValidateCommand(opts *Options) *cobra.Command {
	var (
		workItemID int
		org        string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Verify that a work item exists in Azure DevOps",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := LoggerFromContext(cmd.Context())

			inputs := actionEnv{}
			if err := parseEnv(&inputs); err != nil {
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
			if workItemID <= 0 {
				return errors.New("a positive --work-item id is required")
			}

			reporter := ghactions.NewReporter(os.Stdout, logger)
			validator := &compliance.Validator{Connect: workItemConnector(logger), Logger: logger}

			err = validator.Validate(cmd.Context(), compliance.ValidateRequest{
				Organization: org,
				Token:        inputs.AzureDevOpsToken,
				WorkItemID:   workItemID,
			})
			if err != nil {
				var failure *compliance.Failure
				if errors.As(err, &failure) {
					reporter.SetFailed(failure.Error())
					return errChecksFailed(reporter)
				}
				return failUnknown(reporter, logger, err)
			}

			logger.Info("work item exists", "work_item", workItemID, "organization", org)
			return nil
		},
	}

	cmd.Flags().IntVar(&workItemID, "work-item", 0, "Azure DevOps work item id")
	cmd.Flags().StringVar(&org, "org", "", "Azure DevOps organization (defaults to the action input)")

	return cmd
}

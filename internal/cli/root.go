// Package cli defines the command-line interface for worklinkctl.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/worklink-ci/worklinkctl/internal/env"
	"github.com/worklink-ci/worklinkctl/internal/logging"
)

const (
	// defaultConfigPath is the default path to the repository configuration file.
	defaultConfigPath = ".worklink.yaml"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	EnvFile    string
	LogLevel   logging.Level
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{
		ConfigPath: defaultConfigPath,
		LogLevel:   logging.LevelInfo,
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worklinkctl",
		Short: "worklinkctl validates and links GitHub pull requests to Azure DevOps work items",
		Long: "worklinkctl is a CI helper that checks pull requests and their commits for Azure DevOps " +
			"work item references (AB#123), maintains a status comment on the pull request, and creates " +
			"artifact links from referenced work items back to the pull request.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.EnvFile != "" {
				vars, err := env.LoadEnvFile(opts.EnvFile)
				if err != nil {
					return fmt.Errorf("load env file %q: %w", opts.EnvFile, err)
				}
				env.Apply(vars)
			}
			if err := logging.InitSentry(os.Getenv("SENTRY_DSN"), "ci"); err != nil {
				return err
			}
			level := logging.ParseLevel(cmd.Flag("log-level").Value.String())
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level).With("run", shortRunID())
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath, "Path to the repository configuration file")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "Path to a .env file loaded before reading inputs (local runs)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newCheckCommand(opts),
		newLinkCommand(opts),
		newValidateCommand(opts),
	)

	return cmd
}

// shortRunID returns a short correlation id attached to every log line of one invocation.
func shortRunID() string {
	return uuid.NewString()[:8]
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}

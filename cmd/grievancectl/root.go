package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	infralogger "github.com/dj0804/GrievanceInsight/infrastructure/logger"
	"github.com/dj0804/GrievanceInsight/internal/bootstrap"
	"github.com/dj0804/GrievanceInsight/internal/config"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	debug      bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "grievancectl",
		Short:         "Analyse and manage student grievances",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $CONFIG_PATH or ./config.yml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newAnalyzeCommand(opts),
		newDemoCommand(opts),
		newMigrateCommand(opts),
		newStatsCommand(opts),
		newSnapshotCommand(opts),
		newTokenCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

// load reads configuration and builds a logger that writes to stderr at
// warn level unless --debug is set.
func (o *globalOptions) load() (*config.Config, infralogger.Logger, error) {
	if o.configPath != "" {
		if err := os.Setenv("CONFIG_PATH", o.configPath); err != nil {
			return nil, nil, fmt.Errorf("set config path: %w", err)
		}
	}
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "console"
	if o.debug {
		cfg.Logging.Level = "debug"
	}
	log, err := bootstrap.CreateLogger(cfg, "stderr")
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// withComponents runs fn with connected storage and closes it afterwards.
func (o *globalOptions) withComponents(ctx context.Context, fn func(*bootstrap.Components) error) error {
	cfg, log, err := o.load()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	comps, err := bootstrap.NewComponents(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := comps.Close(); closeErr != nil {
			log.Warn("Failed to close storage", infralogger.Error(closeErr))
		}
	}()
	return fn(comps)
}

func newVersionCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", bootstrap.ServiceName, cfg.Service.Version)
			return nil
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dj0804/GrievanceInsight/infrastructure/jwt"
	"github.com/dj0804/GrievanceInsight/internal/bootstrap"
)

const defaultTokenTTL = 24 * time.Hour

func newStatsCommand(opts *globalOptions) *cobra.Command {
	var out outputOptions

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard for every stored grievance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				d, err := c.Service.StoredDashboard(cmd.Context())
				if err != nil {
					return err
				}
				return out.write(cmd.OutOrStdout(), d)
			})
		},
	}
	out.register(cmd)
	return cmd
}

func newSnapshotCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Record an analytics snapshot now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				snapshotter, err := c.NewSnapshotter()
				if err != nil {
					return err
				}
				snap, err := snapshotter.Capture(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Snapshot %d recorded for %s\n", snap.ID, snap.AnalyticsDate.Format(time.DateOnly))
				fmt.Fprintf(w, "Total grievances: %d\n", snap.TotalGrievances)
				fmt.Fprintf(w, "Weekly growth: %.2f%%\n", snap.WeeklyGrowth)
				if len(snap.TrendingIssues) > 0 {
					fmt.Fprintf(w, "Trending:\n  %s\n", strings.Join(snap.TrendingIssues, "\n  "))
				}
				return nil
			})
		},
	}
}

func newTokenCommand(opts *globalOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret is not set; the API is unauthenticated")
			}
			token, err := jwt.IssueToken(cfg.Auth.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", defaultTokenTTL, "token lifetime")
	return cmd
}

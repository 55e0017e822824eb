package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dj0804/GrievanceInsight/internal/bootstrap"
	"github.com/dj0804/GrievanceInsight/internal/domain"
	"github.com/dj0804/GrievanceInsight/internal/ingest"
	"github.com/dj0804/GrievanceInsight/internal/report"
	"github.com/dj0804/GrievanceInsight/internal/service"
)

type outputOptions struct {
	json bool
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "print the dashboard as JSON")
}

func (o *outputOptions) write(w io.Writer, d *domain.Dashboard) error {
	if !o.json {
		return report.Render(w, d)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func newAnalyzeCommand(opts *globalOptions) *cobra.Command {
	var (
		out       outputOptions
		persist   bool
		batchName string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyse a CSV or XLSX file of complaints",
		Long: `Analyse a CSV or XLSX file whose header row contains a raw_text column.
The first column is used when raw_text is absent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecords(args[0])
			if err != nil {
				return err
			}
			if batchName == "" {
				batchName = filepath.Base(args[0])
			}

			return opts.withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				if persist && !c.Service.HasStore() {
					return bootstrap.ErrNoDatabase
				}
				result, analyzeErr := c.Service.AnalyzeBatch(cmd.Context(), records, service.BatchOptions{
					Persist:   persist,
					BatchName: batchName,
				})
				if analyzeErr != nil && (result == nil || !domain.IsPersistence(analyzeErr)) {
					return analyzeErr
				}
				if writeErr := out.write(cmd.OutOrStdout(), result.Dashboard); writeErr != nil {
					return writeErr
				}
				if analyzeErr != nil {
					return analyzeErr
				}
				if persist {
					fmt.Fprintf(cmd.ErrOrStderr(), "Stored batch %q (id %d, %d grievances)\n",
						result.BatchName, result.BatchID, len(result.GrievanceIDs))
				}
				return nil
			})
		},
	}
	out.register(cmd)
	cmd.Flags().BoolVar(&persist, "persist", false, "store the complaints and batch summary in the database")
	cmd.Flags().StringVar(&batchName, "batch-name", "", "batch name to store (default is the file name)")
	return cmd
}

func readRecords(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ingest.Parse(filepath.Base(path), f)
}

func newDemoCommand(opts *globalOptions) *cobra.Command {
	var out outputOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Analyse the built-in sample complaints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withComponents(cmd.Context(), func(c *bootstrap.Components) error {
				d, err := c.Service.Demo(cmd.Context())
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

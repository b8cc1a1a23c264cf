package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"financas/internal/log"
	"financas/internal/services"
)

func newTotalCommand(open StoreOpener, indent *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "Print the all-time income and expense totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReports(cmd.Context(), open, func(reports *services.ReportService) error {
				totals, err := reports.ComputeTotals(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), totals, *indent)
			})
		},
	}
}

func newMonthlyCommand(open StoreOpener, indent *bool) *cobra.Command {
	var year, month string

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Print the entries and sums of one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReports(cmd.Context(), open, func(reports *services.ReportService) error {
				report, err := reports.GenerateMonthlyReport(cmd.Context(), year, month)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report, *indent)
			})
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "four-digit year, e.g. 2024")
	cmd.Flags().StringVar(&month, "month", "", "two-digit month, e.g. 03")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("month")

	return cmd
}

func withReports(ctx context.Context, open StoreOpener, fn func(*services.ReportService) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := open(ctx)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer res.Close()

	logger := log.FromContext(ctx).WithComponent(log.ComponentCLI)
	entries := services.NewEntryService(res.Store, logger)
	return fn(services.NewReportService(entries, logger))
}

func printJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

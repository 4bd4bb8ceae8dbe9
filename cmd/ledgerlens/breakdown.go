package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/report"
	"github.com/spf13/cobra"
)

func breakdownCmd() *cobra.Command {
	var timeframe string

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Show the top expense categories for a timeframe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var kind model.PeriodKind
			switch timeframe {
			case "month":
				kind = model.PeriodMonth
			case "year":
				kind = model.PeriodYear
			case "trailing12":
				kind = model.PeriodTrailing12
			default:
				return fmt.Errorf("--timeframe must be one of month, year, trailing12")
			}
			window, err := model.NewPeriodWindow(kind, time.Now())
			if err != nil {
				return err
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			quickbooksSource, xeroSource, err := platformSources(cmd.Context(), store)
			if err != nil {
				return err
			}

			engine := report.NewEngine()
			var req report.BreakdownRequest

			switch {
			case quickbooksSource != nil:
				req.Platform = model.PlatformQuickBooks
				tree, fetchErr := quickbooksSource.ProfitAndLossReport(cmd.Context(), window)
				if fetchErr != nil {
					return fmt.Errorf("failed to fetch report: %w", fetchErr)
				}
				req.Tree = tree
			case xeroSource != nil:
				req.Platform = model.PlatformXero
				tree, fetchErr := xeroSource.ProfitAndLossReport(cmd.Context(), window)
				if fetchErr != nil {
					return fmt.Errorf("failed to fetch report: %w", fetchErr)
				}
				req.Tree = tree
				if tcos, found := report.TotalCostOfSales(tree); found {
					req.TotalCostOfSales = tcos
				}
			}

			buckets, err := engine.Breakdown(req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"previousPeriodData": buckets,
				"timeframe":          timeframe,
			})
		},
	}

	cmd.Flags().StringVar(&timeframe, "timeframe", "month", "timeframe (month, year, trailing12)")

	return cmd
}

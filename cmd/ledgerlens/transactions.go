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

func transactionsCmd() *cobra.Command {
	var (
		fromRaw     string
		toRaw       string
		accountID   string
		accountCode string
	)

	cmd := &cobra.Command{
		Use:   "transactions <category>",
		Short: "Extract the normalized transactions of one expense category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := time.Parse("2006-01-02", fromRaw)
			if err != nil {
				return fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
			}
			to, err := time.Parse("2006-01-02", toRaw)
			if err != nil {
				return fmt.Errorf("--to must be YYYY-MM-DD: %w", err)
			}
			window := model.CustomWindow(from, to)

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
			req := report.CategoryRequest{
				Category: args[0],
				Window:   window,
			}

			switch {
			case quickbooksSource != nil:
				req.Platform = model.PlatformQuickBooks
				tree, fetchErr := quickbooksSource.TransactionListReport(cmd.Context(), window)
				if fetchErr != nil {
					return fmt.Errorf("failed to fetch report: %w", fetchErr)
				}
				req.Tree = tree
			case xeroSource != nil:
				req.Platform = model.PlatformXero
				req.Fetch = xeroSource.BillPage
				req.Account = report.AccountRef{ID: accountID, Code: accountCode}
				if req.Account.IsZero() {
					return fmt.Errorf("--account-id or --account-code is required for xero")
				}
			}

			details, err := engine.CategoryTransactions(cmd.Context(), req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"expenseName": args[0],
				"details":     details,
			})
		},
	}

	cmd.Flags().StringVar(&fromRaw, "from", "", "window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toRaw, "to", "", "window end, inclusive (YYYY-MM-DD)")
	cmd.Flags().StringVar(&accountID, "account-id", "", "ledger account identifier (xero)")
	cmd.Flags().StringVar(&accountCode, "account-code", "", "ledger account code (xero)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

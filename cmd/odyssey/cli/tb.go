package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

func newTrialBalanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tb",
		Short: "Trial balance maintenance",
	}
	cmd.AddCommand(newTrialBalanceRefreshCommand())
	return cmd
}

func newTrialBalanceRefreshCommand() *cobra.Command {
	var (
		companyID int64
		asOf      string
		stale     bool
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Recompute the trial balance of one company or of every stale company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if stale == (companyID != 0) {
				return errors.New("exactly one of --company or --stale is required")
			}
			if companyID < 0 {
				return fmt.Errorf("--company must be positive, got %d", companyID)
			}
			date, err := parseDate(asOf)
			if err != nil {
				return err
			}

			env, err := openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()
			service := env.services().TrialBalance

			if stale {
				cleared, err := service.RefreshStale(cmd.Context(), limit)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d stale compan(ies)\n", cleared)
				return nil
			}

			tb, cleared, err := service.Refresh(cmd.Context(), platformshared.Tenant{CompanyID: companyID}, date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "company %d as of %s: debit %s credit %s balanced=%t\n",
				tb.CompanyID, tb.AsOf, tb.TotalClosingDebit.StringFixed(2), tb.TotalClosingCredit.StringFixed(2), tb.Balanced)
			if !cleared {
				fmt.Fprintln(cmd.OutOrStdout(), "ledger changed during refresh; cache left stale")
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&companyID, "company", 0, "company id to refresh")
	cmd.Flags().StringVar(&asOf, "as-of", "", "as-of date YYYY-MM-DD (defaults to today)")
	cmd.Flags().BoolVar(&stale, "stale", false, "refresh every company flagged stale")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum companies to refresh with --stale")

	return cmd
}

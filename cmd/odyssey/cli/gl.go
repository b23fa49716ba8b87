package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newGLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gl",
		Short: "General ledger checks",
	}
	cmd.AddCommand(newGLVerifyCommand())
	return cmd
}

func newGLVerifyCommand() *cobra.Command {
	var companyID int64

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every posted entry balances and matches its stored totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if companyID < 0 {
				return fmt.Errorf("--company must not be negative, got %d", companyID)
			}

			env, err := openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			issues, checked, err := env.services().Integrity.Verify(cmd.Context(), companyID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "checked %d entr(ies), %d violation(s)\n", checked, len(issues))
			if len(issues) == 0 {
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COMPANY\tENTRY\tREASON")
			for _, issue := range issues {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", issue.CompanyID, issue.EntryNumber, issue.Reason)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return fmt.Errorf("ledger integrity check found %d violation(s)", len(issues))
		},
	}

	cmd.Flags().Int64Var(&companyID, "company", 0, "company id to check (0 checks all companies)")

	return cmd
}

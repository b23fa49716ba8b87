package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

func newFiscalYearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fy",
		Short: "Manage fiscal years",
	}
	cmd.AddCommand(
		newFiscalYearLockCommand("lock", "Lock a fiscal year against posting", true),
		newFiscalYearLockCommand("unlock", "Reopen a locked fiscal year", false),
	)
	return cmd
}

func newFiscalYearLockCommand(use, short string, lock bool) *cobra.Command {
	var tenant platformshared.Tenant

	cmd := &cobra.Command{
		Use:   use + " <fiscal-year-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireTenant(tenant); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			env, err := openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			service := env.services().FiscalYears
			apply := service.Unlock
			if lock {
				apply = service.Lock
			}
			fy, err := apply(cmd.Context(), tenant, id)
			if err != nil {
				return fmt.Errorf("fiscal year %d: %w", id, err)
			}
			state := "unlocked"
			if fy.IsLocked {
				state = "locked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fiscal year %s (%d) %s\n", fy.Name, fy.ID, state)
			return nil
		},
	}

	tenantFlags(cmd, &tenant)

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage statement mapping catalogs",
	}
	cmd.AddCommand(newCatalogSeedCommand())
	return cmd
}

func newCatalogSeedCommand() *cobra.Command {
	var standard string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in mapping catalog into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			if standard == "" {
				standard = env.cfg.GAAPStandard
			}
			count, err := env.services().Schedule.Seed(cmd.Context(), standard)
			if err != nil {
				return fmt.Errorf("seeding %s: %w", standard, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d mapping(s) for %s\n", count, standard)
			return nil
		},
	}

	cmd.Flags().StringVar(&standard, "standard", "", "GAAP standard to seed (defaults to LEDGER_GAAP_STANDARD)")

	return cmd
}

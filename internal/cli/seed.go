// internal/cli/seed.go
package cli

import (
	"github.com/spf13/cobra"

	"dev-leaderboard/internal/syncer"
)

func newSeedCmd(factory Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the leaderboard from the configured GitHub search",
		Long: `Runs SEED_QUERY against GitHub search and syncs up to SEED_COUNT users,
waiting SEED_DELAY between them. Without --always nothing happens when the
store already holds profiles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			always, _ := cmd.Flags().GetBool("always")

			svc, logger, err := open(cmd, factory)
			if err != nil {
				return err
			}
			defer closeServices(cmd.Context(), svc, logger)

			var report syncer.SeedReport
			if always {
				report, err = svc.Syncer.Seed(cmd.Context())
			} else {
				report, err = svc.Syncer.SeedIfEmpty(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().Bool("always", false, "Seed even when the store is not empty")
	return cmd
}

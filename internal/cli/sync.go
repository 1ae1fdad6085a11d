// internal/cli/sync.go
package cli

import (
	"github.com/spf13/cobra"

	"dev-leaderboard/internal/model"
)

func newSyncCmd(factory Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <username>",
		Short: "Sync one GitHub profile into the leaderboard",
		Long: `Fetches the user's profile, repositories, events, gists and organizations
from GitHub, scores them and stores the result. A profile synced within
STALE_AFTER is returned from the store unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			svc, logger, err := open(cmd, factory)
			if err != nil {
				return err
			}
			defer closeServices(cmd.Context(), svc, logger)

			var dev *model.Developer
			if force {
				dev, err = svc.Syncer.SyncUserForce(cmd.Context(), args[0])
			} else {
				dev, err = svc.Syncer.SyncUser(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dev)
		},
	}
	cmd.Flags().Bool("force", false, "Ignore the staleness window and always refetch")
	return cmd
}

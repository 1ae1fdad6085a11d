// internal/cli/insights.go
package cli

import (
	"github.com/spf13/cobra"

	custom_errors "dev-leaderboard/internal/errors"
	"dev-leaderboard/internal/insights"
	"dev-leaderboard/internal/scoring"
)

func newInsightsCmd(factory Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "insights <username>",
		Short: "Generate insights for a synced profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, logger, err := open(cmd, factory)
			if err != nil {
				return err
			}
			defer closeServices(cmd.Context(), svc, logger)

			if svc.Insights == nil {
				return custom_errors.ErrInsightsUnavailable
			}

			dev, err := svc.Store.GetDeveloper(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			result, err := svc.Insights.Generate(cmd.Context(), insights.Request{
				Username:    dev.Username,
				Stats:       dev.Stats,
				BadgeTitles: scoring.Titles(dev.Badges),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

// internal/cli/search.go
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dev-leaderboard/internal/github"
)

func newSearchCmd(factory Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search GitHub users and print their logins",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := github.SearchQuery{}
			if len(args) == 1 {
				q.Text = args[0]
			}
			q.Location, _ = cmd.Flags().GetString("location")
			q.Language, _ = cmd.Flags().GetString("language")
			q.Org, _ = cmd.Flags().GetString("org")
			q.MinFollowers, _ = cmd.Flags().GetInt("min-followers")
			limit, _ := cmd.Flags().GetInt("limit")

			if q.IsEmpty() {
				return errors.New("at least one search criterion is required")
			}
			if limit < 1 || limit > 100 {
				return fmt.Errorf("--limit must be between 1 and 100, got %d", limit)
			}
			q.Type = "user"

			svc, logger, err := open(cmd, factory)
			if err != nil {
				return err
			}
			defer closeServices(cmd.Context(), svc, logger)

			result, err := svc.Searcher.SearchUsers(cmd.Context(), q.String(), 1, limit)
			if err != nil {
				return err
			}
			logins := make([]string, 0, len(result.Users))
			for _, u := range result.Users {
				logins = append(logins, u.Login)
			}
			if len(logins) == 0 {
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(logins, "\n"))
			return err
		},
	}
	cmd.Flags().String("location", "", "Filter by location")
	cmd.Flags().String("language", "", "Filter by primary language")
	cmd.Flags().String("org", "", "Filter by organization membership")
	cmd.Flags().Int("min-followers", 0, "Only users with more followers than this")
	cmd.Flags().Int("limit", 20, "Maximum number of users to print")
	return cmd
}

// internal/cli/root.go

// Package cli contains the leaderboardctl commands, built using the Cobra
// library. Each command opens the configured services through a Factory so
// the command tree can be tested without a database or network.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dev-leaderboard/internal/insights"
	"dev-leaderboard/internal/model"
	"dev-leaderboard/internal/syncer"
)

// Syncer refreshes profiles and seeds the store.
type Syncer interface {
	SyncUser(ctx context.Context, username string) (*model.Developer, error)
	SyncUserForce(ctx context.Context, username string) (*model.Developer, error)
	Seed(ctx context.Context) (syncer.SeedReport, error)
	SeedIfEmpty(ctx context.Context) (syncer.SeedReport, error)
}

// Store is the read side needed by the insights command.
type Store interface {
	GetDeveloper(ctx context.Context, username string) (*model.Developer, error)
}

// Searcher runs GitHub user searches.
type Searcher interface {
	SearchUsers(ctx context.Context, query string, page, perPage int) (*model.SearchResult, error)
}

// InsightsGenerator produces the narrative for a profile.
type InsightsGenerator interface {
	Generate(ctx context.Context, req insights.Request) (*model.Insights, error)
}

// Services are the components a command may use. Insights is nil when no
// model key is configured.
type Services struct {
	Syncer   Syncer
	Store    Store
	Searcher Searcher
	Insights InsightsGenerator
	Close    func(ctx context.Context) error
}

// Factory opens the services for one command invocation.
type Factory func(ctx context.Context, logger *slog.Logger) (*Services, error)

// NewRootCmd builds the command tree.
func NewRootCmd(factory Factory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leaderboardctl",
		Short: "Operate the developer leaderboard from the command line.",
		Long: `leaderboardctl syncs GitHub profiles into the leaderboard store,
seeds an empty leaderboard, searches GitHub users and generates
profile insights, using the same configuration as the service.`,
		SilenceUsage: true,
	}

	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")

	rootCmd.AddCommand(
		newSyncCmd(factory),
		newSeedCmd(factory),
		newInsightsCmd(factory),
		newSearchCmd(factory),
	)
	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(ctx context.Context, factory Factory) {
	if err := NewRootCmd(factory).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// open builds a logger honouring --verbose and opens the services.
func open(cmd *cobra.Command, factory Factory) (*Services, *slog.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	svc, err := factory(cmd.Context(), logger)
	if err != nil {
		return nil, nil, err
	}
	return svc, logger, nil
}

func closeServices(ctx context.Context, svc *Services, logger *slog.Logger) {
	if svc.Close == nil {
		return
	}
	if err := svc.Close(ctx); err != nil {
		logger.Warn("Failed to close services", "error", err)
	}
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

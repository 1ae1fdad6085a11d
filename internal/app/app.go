// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"

	"dev-leaderboard/internal/config"
	"dev-leaderboard/internal/github"
	"dev-leaderboard/internal/insights"
	"dev-leaderboard/internal/metrics"
	"dev-leaderboard/internal/store"
	"dev-leaderboard/internal/syncer"
)

// App holds the long-lived components shared by the server and the CLI.
// It is built once at process start and closed on shutdown.
type App struct {
	Config           *config.Config
	Store            store.Store
	GitHub           *github.Client
	Syncer           *syncer.Syncer
	Insights         *insights.Generator // nil without GEMINI_API_KEY
	Metrics          *metrics.Metrics
	ContributorsRepo *github.RepoIdentifier
}

// Build connects the configured store and wires the services on top of it.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	ghClient, err := github.NewClient(cfg.GithubToken, logger)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}

	m := metrics.New(reg)
	a := &App{
		Config:  cfg,
		Store:   st,
		GitHub:  ghClient,
		Metrics: m,
		Syncer: syncer.NewSyncer(ghClient, st, logger, m, syncer.Options{
			StaleAfter:          cfg.StaleAfter,
			LanguageConcurrency: cfg.LanguageConcurrency,
			PruneStaleRepos:     cfg.PruneStaleRepos,
			SeedQuery:           cfg.SeedQuery,
			SeedCount:           cfg.SeedCount,
			SeedDelay:           cfg.SeedDelay,
		}),
	}

	if cfg.ContributorsRepo != "" {
		repo, err := github.ParseRepo(cfg.ContributorsRepo)
		if err != nil {
			_ = st.Close(ctx)
			return nil, err
		}
		a.ContributorsRepo = &repo
	}

	if cfg.InsightsEnabled() {
		gemini, err := insights.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			_ = st.Close(ctx)
			return nil, err
		}
		a.Insights = insights.NewGenerator(gemini, logger)
	} else {
		logger.Warn("GEMINI_API_KEY is not set; insights are disabled")
	}

	return a, nil
}

// Close releases the store.
func (a *App) Close(ctx context.Context) error {
	return a.Store.Close(ctx)
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		st, err := store.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Info("MongoDB connection established", "database", cfg.MongoDatabase)
		return st, nil
	default:
		if err := RunMigrations(cfg.MigrationsPath, cfg.DBURL); err != nil {
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		logger.Info("Database migrations applied successfully")

		st, err := store.NewPostgres(ctx, cfg.DBURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Database connection established")
		return st, nil
	}
}

// RunMigrations applies every pending migration from source to dbURL.
func RunMigrations(source, dbURL string) error {
	m, err := migrate.New(source, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

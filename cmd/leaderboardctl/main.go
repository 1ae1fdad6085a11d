// cmd/leaderboardctl/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"dev-leaderboard/internal/app"
	"dev-leaderboard/internal/cli"
	"dev-leaderboard/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli.Execute(ctx, openServices)
}

func openServices(ctx context.Context, logger *slog.Logger) (*cli.Services, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Metrics are only scraped from the service; the CLI counts into a private registry.
	a, err := app.Build(ctx, cfg, logger, prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}

	svc := &cli.Services{
		Syncer:   a.Syncer,
		Store:    a.Store,
		Searcher: a.GitHub,
		Close:    a.Close,
	}
	if a.Insights != nil {
		svc.Insights = a.Insights
	}
	return svc, nil
}

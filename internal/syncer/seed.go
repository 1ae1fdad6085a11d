// internal/syncer/seed.go
package syncer

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	custom_errors "dev-leaderboard/internal/errors"
	"dev-leaderboard/internal/metrics"
)

const maxSearchPerPage = 100

// SeedReport summarizes one seeding run.
type SeedReport struct {
	Candidates int `json:"candidates"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
}

// SeedIfEmpty seeds the store when it holds no profiles. Concurrent callers
// share one run. The run is detached from ctx: a caller that gives up gets
// ctx's error while the seed continues to completion.
func (s *Syncer) SeedIfEmpty(ctx context.Context) (SeedReport, error) {
	runCtx := context.WithoutCancel(ctx)
	ch := s.seeds.DoChan("seed", func() (any, error) {
		count, err := s.store.CountDevelopers(runCtx)
		if err != nil {
			return SeedReport{}, fmt.Errorf("%w: count developers: %w", custom_errors.ErrPersistence, err)
		}
		if count > 0 {
			return SeedReport{}, nil
		}
		return s.Seed(runCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return SeedReport{}, res.Err
		}
		return res.Val.(SeedReport), nil
	case <-ctx.Done():
		s.logger.Warn("Caller stopped waiting for seeding, it continues in the background", "error", ctx.Err())
		return SeedReport{}, ctx.Err()
	}
}

// Seed searches GitHub with the seed query and syncs each hit in turn, spaced
// by SeedDelay. Individual failures are counted and skipped. A failed search
// yields an empty report.
func (s *Syncer) Seed(ctx context.Context) (SeedReport, error) {
	var report SeedReport
	logger := s.logger.With("query", s.opts.SeedQuery)
	logger.Info("Seeding leaderboard from GitHub search", "count", s.opts.SeedCount)

	result, err := s.upstream.SearchUsers(ctx, s.opts.SeedQuery, 1, min(s.opts.SeedCount, maxSearchPerPage))
	if err != nil {
		logger.Error("Seed search failed, continuing with an empty dataset", "error", err)
		s.metrics.UpstreamFailures.WithLabelValues("search").Inc()
		return report, nil
	}

	users := result.Users
	if len(users) > s.opts.SeedCount {
		users = users[:s.opts.SeedCount]
	}
	report.Candidates = len(users)

	limiter := rate.NewLimiter(rate.Every(s.opts.SeedDelay), 1)
	for _, u := range users {
		if err := limiter.Wait(ctx); err != nil {
			return report, err
		}
		if _, err := s.SyncUser(ctx, u.Login); err != nil {
			report.Failed++
			s.metrics.Seeds.WithLabelValues(metrics.ResultFailed).Inc()
			logger.Warn("Failed to sync seed candidate, continuing", "username", u.Login, "error", err)
			continue
		}
		report.Succeeded++
		s.metrics.Seeds.WithLabelValues(metrics.ResultSucceeded).Inc()
	}

	logger.Info("Seeding finished", "candidates", report.Candidates, "succeeded", report.Succeeded, "failed", report.Failed)
	return report, nil
}

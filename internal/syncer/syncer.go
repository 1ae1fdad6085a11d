// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	custom_errors "dev-leaderboard/internal/errors"
	"dev-leaderboard/internal/github"
	"dev-leaderboard/internal/metrics"
	"dev-leaderboard/internal/model"
	"dev-leaderboard/internal/scoring"
)

// Stage names used in logs and SyncError.
const (
	StageProfile        = "profile"
	StageRepos          = "repos"
	StageEvents         = "events"
	StageGists          = "gists"
	StageOrgs           = "orgs"
	StageLanguages      = "languages"
	StagePersistRepos   = "persist_repos"
	StagePersistProfile = "persist_profile"
	StagePrune          = "prune"
)

// Fallbacks for profile fields GitHub leaves empty.
const (
	unknownLocation = "N/A"
	emptyBio        = "No bio available."
)

// Upstream is the subset of the GitHub client the syncer needs.
type Upstream interface {
	GetUser(ctx context.Context, username string) (*model.GitHubUser, error)
	ListUserRepos(ctx context.Context, username string) ([]model.Repository, error)
	ListUserEvents(ctx context.Context, username string) ([]model.Event, error)
	ListUserGists(ctx context.Context, username string) ([]model.Gist, error)
	ListUserOrgs(ctx context.Context, username string) ([]model.Organization, error)
	ListRepoLanguages(ctx context.Context, owner, name string) (map[string]int64, error)
	SearchUsers(ctx context.Context, query string, page, perPage int) (*model.SearchResult, error)
}

// Store is the subset of the persistence layer the syncer writes to.
type Store interface {
	GetDeveloper(ctx context.Context, username string) (*model.Developer, error)
	UpsertDeveloper(ctx context.Context, dev *model.Developer) error
	CountDevelopers(ctx context.Context) (int64, error)
	UpsertRepository(ctx context.Context, repo *model.Repository) error
	PruneRepositories(ctx context.Context, owner string, keep []int64) (int64, error)
}

// Options tunes sync and seeding behaviour.
type Options struct {
	StaleAfter          time.Duration
	LanguageConcurrency int
	PruneStaleRepos     bool
	SeedQuery           string
	SeedCount           int
	SeedDelay           time.Duration
}

// Syncer refreshes cached developer profiles from GitHub.
type Syncer struct {
	upstream Upstream
	store    Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	opts     Options
	now      func() time.Time

	syncs singleflight.Group
	seeds singleflight.Group
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(upstream Upstream, store Store, logger *slog.Logger, m *metrics.Metrics, opts Options) *Syncer {
	if opts.LanguageConcurrency <= 0 {
		opts.LanguageConcurrency = 1
	}
	return &Syncer{
		upstream: upstream,
		store:    store,
		logger:   logger,
		metrics:  m,
		opts:     opts,
		now:      time.Now,
	}
}

// SyncUser returns the cached profile while it is fresher than StaleAfter and
// otherwise rebuilds it from GitHub. Concurrent calls for the same user share
// one run.
func (s *Syncer) SyncUser(ctx context.Context, username string) (*model.Developer, error) {
	return s.sync(ctx, username, false)
}

// SyncUserForce rebuilds the profile regardless of its age.
func (s *Syncer) SyncUserForce(ctx context.Context, username string) (*model.Developer, error) {
	return s.sync(ctx, username, true)
}

func (s *Syncer) sync(ctx context.Context, username string, force bool) (*model.Developer, error) {
	if err := github.ValidateUsername(username); err != nil {
		return nil, err
	}

	key := strings.ToLower(username)
	if force {
		key += ":force"
	}
	v, err, _ := s.syncs.Do(key, func() (any, error) {
		return s.syncOnce(ctx, username, force)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Developer), nil
}

func (s *Syncer) syncOnce(ctx context.Context, username string, force bool) (*model.Developer, error) {
	if !force {
		existing, err := s.store.GetDeveloper(ctx, username)
		switch {
		case err == nil:
			if age := s.now().Sub(existing.LastSyncedAt); age < s.opts.StaleAfter {
				s.logger.Debug("Profile is fresh, skipping sync", "username", username, "age", age.String())
				s.metrics.Syncs.WithLabelValues(metrics.ResultCached).Inc()
				return existing, nil
			}
		case errors.Is(err, custom_errors.ErrNotFound):
		default:
			s.logger.Warn("Failed to read cached profile, syncing anyway", "username", username, "error", err)
		}
	}

	start := time.Now()
	dev, err := s.refresh(ctx, username)
	s.metrics.SyncDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Syncs.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, err
	}
	s.metrics.Syncs.WithLabelValues(metrics.ResultSynced).Inc()
	return dev, nil
}

// refresh fetches, aggregates and persists one profile.
func (s *Syncer) refresh(ctx context.Context, username string) (*model.Developer, error) {
	logger := s.logger.With("username", username, "sync_id", uuid.NewString())
	logger.Info("Syncing developer profile")

	var (
		user          *model.GitHubUser
		repos         []model.Repository
		events        []model.Event
		gists         []model.Gist
		orgs          []model.Organization
		reposComplete = true
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.upstream.GetUser(gctx, username)
		if err != nil {
			return &custom_errors.SyncError{Username: username, Stage: StageProfile, Err: err}
		}
		user = u
		return nil
	})
	g.Go(func() error {
		r, err := s.upstream.ListUserRepos(gctx, username)
		if err != nil {
			s.degraded(logger, StageRepos, err)
			reposComplete = false
		}
		repos = r
		return nil
	})
	g.Go(func() error {
		e, err := s.upstream.ListUserEvents(gctx, username)
		if err != nil {
			s.degraded(logger, StageEvents, err)
		}
		events = e
		return nil
	})
	g.Go(func() error {
		gs, err := s.upstream.ListUserGists(gctx, username)
		if err != nil {
			s.degraded(logger, StageGists, err)
		}
		gists = gs
		return nil
	})
	g.Go(func() error {
		o, err := s.upstream.ListUserOrgs(gctx, username)
		if err != nil {
			s.degraded(logger, StageOrgs, err)
		}
		orgs = o
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to fetch profile, aborting sync", "stage", StageProfile, "error", err)
		return nil, err
	}
	logger.Info("Fetched GitHub data",
		"login", user.Login, "repos", len(repos), "events", len(events), "gists", len(gists), "orgs", len(orgs))

	s.fetchLanguages(ctx, logger, user.Login, repos)

	now := s.now().UTC()
	stats := aggregateStats(user, repos, events, gists, now)
	languages := rankLanguages(repos, topLanguages)
	if orgs == nil {
		orgs = []model.Organization{}
	}

	if err := s.persistRepositories(ctx, logger, user.Login, repos, now); err != nil {
		return nil, &custom_errors.SyncError{Username: username, Stage: StagePersistRepos, Err: err}
	}
	if s.opts.PruneStaleRepos {
		s.pruneRepositories(ctx, logger, user.Login, repos, reposComplete)
	}

	dev := buildDeveloper(user, stats, languages, orgs, now)
	if err := s.store.UpsertDeveloper(ctx, dev); err != nil {
		logger.Error("Failed to upsert profile", "stage", StagePersistProfile, "error", err)
		return nil, &custom_errors.SyncError{
			Username: username,
			Stage:    StagePersistProfile,
			Err:      fmt.Errorf("%w: %w", custom_errors.ErrPersistence, err),
		}
	}

	logger.Info("Developer profile synced", "score", dev.Score, "badges", len(dev.Badges), "languages", dev.Languages)
	return dev, nil
}

// fetchLanguages fills in each repository's language histogram. A failure
// leaves that repository with an empty histogram.
func (s *Syncer) fetchLanguages(ctx context.Context, logger *slog.Logger, login string, repos []model.Repository) {
	var g errgroup.Group
	g.SetLimit(s.opts.LanguageConcurrency)

	for i := range repos {
		repo := &repos[i]
		g.Go(func() error {
			owner := repo.OwnerUsername
			if owner == "" {
				owner = login
			}
			langs, err := s.upstream.ListRepoLanguages(ctx, owner, repo.Name)
			if err != nil {
				s.degraded(logger.With("repo", repo.FullName), StageLanguages, err)
				langs = map[string]int64{}
			}
			repo.Languages = langs
			return nil
		})
	}
	_ = g.Wait()
}

// persistRepositories upserts every repository, continuing past failures.
func (s *Syncer) persistRepositories(ctx context.Context, logger *slog.Logger, login string, repos []model.Repository, now time.Time) error {
	failed := 0
	for i := range repos {
		repo := &repos[i]
		repo.OwnerUsername = login
		repo.LastSyncedAt = now
		if repo.Languages == nil {
			repo.Languages = map[string]int64{}
		}
		if err := s.store.UpsertRepository(ctx, repo); err != nil {
			failed++
			logger.Error("Failed to upsert repository", "stage", StagePersistRepos, "repo", repo.FullName, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d repository upserts failed", custom_errors.ErrPersistence, failed, len(repos))
	}
	return nil
}

// pruneRepositories removes stored repositories the owner no longer has.
// A partial listing would delete live rows, so it is skipped.
func (s *Syncer) pruneRepositories(ctx context.Context, logger *slog.Logger, login string, repos []model.Repository, complete bool) {
	if !complete {
		logger.Warn("Repository listing was partial, skipping prune", "stage", StagePrune)
		return
	}
	keep := make([]int64, len(repos))
	for i, r := range repos {
		keep[i] = r.GithubRepoID
	}
	removed, err := s.store.PruneRepositories(ctx, login, keep)
	if err != nil {
		logger.Error("Failed to prune repositories", "stage", StagePrune, "error", err)
		return
	}
	if removed > 0 {
		logger.Info("Pruned stale repositories", "count", removed)
	}
}

func (s *Syncer) degraded(logger *slog.Logger, stage string, err error) {
	logger.Warn("GitHub fetch failed, continuing without it", "stage", stage, "error", err)
	s.metrics.UpstreamFailures.WithLabelValues(stage).Inc()
}

func buildDeveloper(user *model.GitHubUser, stats model.Stats, languages []string, orgs []model.Organization, now time.Time) *model.Developer {
	dev := &model.Developer{
		Username:      user.Login,
		Name:          orDefault(user.Name, user.Login),
		AvatarURL:     user.AvatarURL,
		Country:       orDefault(user.Location, unknownLocation),
		Location:      orDefault(user.Location, unknownLocation),
		Bio:           orDefault(user.Bio, emptyBio),
		Score:         scoring.Score(stats),
		Stats:         stats,
		Languages:     languages,
		Organizations: orgs,
		LastSyncedAt:  now,
	}
	dev.Badges = scoring.Award(scoring.Input{Stats: stats, Languages: languages, Organizations: orgs})
	return dev
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

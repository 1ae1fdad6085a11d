// internal/store/postgres.go
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"dev-leaderboard/internal/database"
	custom_errors "dev-leaderboard/internal/errors"
	"dev-leaderboard/internal/model"
)

// Postgres is the Store backed by the developers and repositories tables.
type Postgres struct {
	q    database.Querier
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects a pool to dbURL. Migrations are applied by the caller.
func NewPostgres(ctx context.Context, dbURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{q: database.New(pool), pool: pool}, nil
}

// NewPostgresWithQuerier builds a Postgres store over an existing querier.
func NewPostgresWithQuerier(q database.Querier) *Postgres {
	return &Postgres{q: q}
}

func (p *Postgres) GetDeveloper(ctx context.Context, username string) (*model.Developer, error) {
	row, err := p.q.GetDeveloperByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: developer %s", custom_errors.ErrNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	return toModelDeveloper(row)
}

func (p *Postgres) UpsertDeveloper(ctx context.Context, dev *model.Developer) error {
	badges, err := json.Marshal(nonNil(dev.Badges))
	if err != nil {
		return fmt.Errorf("failed to encode badges: %w", err)
	}
	orgs, err := json.Marshal(nonNil(dev.Organizations))
	if err != nil {
		return fmt.Errorf("failed to encode organizations: %w", err)
	}

	return p.q.UpsertDeveloper(ctx, database.UpsertDeveloperParams{
		Username:         dev.Username,
		Name:             dev.Name,
		AvatarUrl:        dev.AvatarURL,
		Country:          dev.Country,
		Location:         dev.Location,
		Bio:              dev.Bio,
		Score:            int32(dev.Score),
		TotalStars:       int32(dev.Stats.TotalStars),
		TotalForks:       int32(dev.Stats.TotalForks),
		TotalFollowers:   int32(dev.Stats.TotalFollowers),
		WeeklyCommits:    int32(dev.Stats.WeeklyCommits),
		PublicRepoCount:  int32(dev.Stats.PublicRepoCount),
		PublicGistsCount: int32(dev.Stats.PublicGistsCount),
		Badges:           badges,
		Languages:        nonNil(dev.Languages),
		Organizations:    orgs,
		LastSyncedAt:     pgtype.Timestamptz{Time: dev.LastSyncedAt, Valid: true},
	})
}

func (p *Postgres) CountDevelopers(ctx context.Context) (int64, error) {
	return p.q.CountDevelopers(ctx)
}

func (p *Postgres) ListDevelopers(ctx context.Context, offset, limit int) ([]model.Developer, error) {
	rows, err := p.q.ListDevelopersByScore(ctx, database.ListDevelopersByScoreParams{
		Limit:  int32(min(limit, math.MaxInt32)),
		Offset: int32(min(offset, math.MaxInt32)),
	})
	if err != nil {
		return nil, err
	}

	devs := make([]model.Developer, 0, len(rows))
	for _, row := range rows {
		dev, err := toModelDeveloper(row)
		if err != nil {
			return nil, err
		}
		devs = append(devs, *dev)
	}
	return devs, nil
}

func (p *Postgres) CountDevelopersAbove(ctx context.Context, score int) (int64, error) {
	return p.q.CountDevelopersWithScoreAbove(ctx, int32(score))
}

func (p *Postgres) ListScores(ctx context.Context) ([]int, error) {
	rows, err := p.q.ListDeveloperScores(ctx)
	if err != nil {
		return nil, err
	}
	scores := make([]int, len(rows))
	for i, s := range rows {
		scores[i] = int(s)
	}
	return scores, nil
}

func (p *Postgres) UpsertRepository(ctx context.Context, repo *model.Repository) error {
	langs, err := json.Marshal(nonNilMap(repo.Languages))
	if err != nil {
		return fmt.Errorf("failed to encode languages: %w", err)
	}

	return p.q.UpsertRepository(ctx, database.UpsertRepositoryParams{
		GithubRepoID:  repo.GithubRepoID,
		OwnerUsername: repo.OwnerUsername,
		Name:          repo.Name,
		FullName:      repo.FullName,
		Description:   toPgText(repo.Description),
		Language:      toPgText(repo.Language),
		Languages:     langs,
		Stars:         int32(repo.Stars),
		Forks:         int32(repo.Forks),
		HtmlUrl:       repo.HTMLURL,
		LastSyncedAt:  pgtype.Timestamptz{Time: repo.LastSyncedAt, Valid: true},
	})
}

func (p *Postgres) ListTopRepositories(ctx context.Context, owner string, limit int) ([]model.Repository, error) {
	rows, err := p.q.ListTopRepositoriesByOwner(ctx, database.ListTopRepositoriesByOwnerParams{
		OwnerUsername: owner,
		RowLimit:      int32(limit),
	})
	if err != nil {
		return nil, err
	}

	repos := make([]model.Repository, 0, len(rows))
	for _, row := range rows {
		repo, err := toModelRepository(row)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

func (p *Postgres) PruneRepositories(ctx context.Context, owner string, keep []int64) (int64, error) {
	// A NULL array would match nothing, so an empty set must be sent as '{}'.
	return p.q.DeleteRepositoriesNotIn(ctx, database.DeleteRepositoriesNotInParams{
		OwnerUsername: owner,
		KeepIds:       nonNil(keep),
	})
}

func (p *Postgres) Close(context.Context) error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func toModelDeveloper(row database.Developer) (*model.Developer, error) {
	dev := &model.Developer{
		Username:  row.Username,
		Name:      row.Name,
		AvatarURL: row.AvatarUrl,
		Country:   row.Country,
		Location:  row.Location,
		Bio:       row.Bio,
		Score:     int(row.Score),
		Stats: model.Stats{
			TotalStars:       int(row.TotalStars),
			TotalForks:       int(row.TotalForks),
			TotalFollowers:   int(row.TotalFollowers),
			WeeklyCommits:    int(row.WeeklyCommits),
			PublicRepoCount:  int(row.PublicRepoCount),
			PublicGistsCount: int(row.PublicGistsCount),
		},
		Languages:    row.Languages,
		LastSyncedAt: row.LastSyncedAt.Time,
	}
	if len(row.Badges) > 0 {
		if err := json.Unmarshal(row.Badges, &dev.Badges); err != nil {
			return nil, fmt.Errorf("failed to decode badges of %s: %w", row.Username, err)
		}
	}
	if len(row.Organizations) > 0 {
		if err := json.Unmarshal(row.Organizations, &dev.Organizations); err != nil {
			return nil, fmt.Errorf("failed to decode organizations of %s: %w", row.Username, err)
		}
	}
	normalize(dev)
	return dev, nil
}

func toModelRepository(row database.Repository) (model.Repository, error) {
	repo := model.Repository{
		GithubRepoID:  row.GithubRepoID,
		OwnerUsername: row.OwnerUsername,
		Name:          row.Name,
		FullName:      row.FullName,
		Description:   fromPgText(row.Description),
		Language:      fromPgText(row.Language),
		Stars:         int(row.Stars),
		Forks:         int(row.Forks),
		HTMLURL:       row.HtmlUrl,
		LastSyncedAt:  row.LastSyncedAt.Time,
	}
	if len(row.Languages) > 0 {
		if err := json.Unmarshal(row.Languages, &repo.Languages); err != nil {
			return model.Repository{}, fmt.Errorf("failed to decode languages of %s: %w", row.FullName, err)
		}
	}
	return repo, nil
}

func toPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func fromPgText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nonNilMap(m map[string]int64) map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return m
}

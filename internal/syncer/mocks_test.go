// internal/syncer/mocks_test.go
package syncer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"dev-leaderboard/internal/metrics"
	"dev-leaderboard/internal/model"
)

// MockUpstream is a mock of the Upstream interface.
type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) GetUser(ctx context.Context, username string) (*model.GitHubUser, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*model.GitHubUser)
	return user, args.Error(1)
}
func (m *MockUpstream) ListUserRepos(ctx context.Context, username string) ([]model.Repository, error) {
	args := m.Called(ctx, username)
	repos, _ := args.Get(0).([]model.Repository)
	return repos, args.Error(1)
}
func (m *MockUpstream) ListUserEvents(ctx context.Context, username string) ([]model.Event, error) {
	args := m.Called(ctx, username)
	events, _ := args.Get(0).([]model.Event)
	return events, args.Error(1)
}
func (m *MockUpstream) ListUserGists(ctx context.Context, username string) ([]model.Gist, error) {
	args := m.Called(ctx, username)
	gists, _ := args.Get(0).([]model.Gist)
	return gists, args.Error(1)
}
func (m *MockUpstream) ListUserOrgs(ctx context.Context, username string) ([]model.Organization, error) {
	args := m.Called(ctx, username)
	orgs, _ := args.Get(0).([]model.Organization)
	return orgs, args.Error(1)
}
func (m *MockUpstream) ListRepoLanguages(ctx context.Context, owner, name string) (map[string]int64, error) {
	args := m.Called(ctx, owner, name)
	langs, _ := args.Get(0).(map[string]int64)
	return langs, args.Error(1)
}
func (m *MockUpstream) SearchUsers(ctx context.Context, query string, page, perPage int) (*model.SearchResult, error) {
	args := m.Called(ctx, query, page, perPage)
	result, _ := args.Get(0).(*model.SearchResult)
	return result, args.Error(1)
}

// MockStore is a mock of the Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetDeveloper(ctx context.Context, username string) (*model.Developer, error) {
	args := m.Called(ctx, username)
	dev, _ := args.Get(0).(*model.Developer)
	return dev, args.Error(1)
}
func (m *MockStore) UpsertDeveloper(ctx context.Context, dev *model.Developer) error {
	args := m.Called(ctx, dev)
	return args.Error(0)
}
func (m *MockStore) CountDevelopers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockStore) UpsertRepository(ctx context.Context, repo *model.Repository) error {
	args := m.Called(ctx, repo)
	if fn, ok := args.Get(0).(func(context.Context, *model.Repository) error); ok {
		return fn(ctx, repo)
	}
	return args.Error(0)
}
func (m *MockStore) PruneRepositories(ctx context.Context, owner string, keep []int64) (int64, error) {
	args := m.Called(ctx, owner, keep)
	return args.Get(0).(int64), args.Error(1)
}

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestSyncer(t *testing.T, up *MockUpstream, st *MockStore, opts Options) (*Syncer, *metrics.Metrics) {
	t.Helper()
	if opts.StaleAfter == 0 {
		opts.StaleAfter = 24 * time.Hour
	}
	if opts.LanguageConcurrency == 0 {
		opts.LanguageConcurrency = 2
	}
	if opts.SeedCount == 0 {
		opts.SeedCount = 20
	}
	if opts.SeedQuery == "" {
		opts.SeedQuery = "followers:>1000"
	}
	m := metrics.NewNop()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewSyncer(up, st, logger, m, opts)
	s.now = func() time.Time { return testNow }
	return s, m
}

// internal/syncer/syncer_test.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	custom_errors "dev-leaderboard/internal/errors"
	"dev-leaderboard/internal/metrics"
	"dev-leaderboard/internal/model"
	"dev-leaderboard/internal/scoring"
)

func threeRepos() []model.Repository {
	return []model.Repository{
		{GithubRepoID: 1, OwnerUsername: "octo", Name: "alpha", FullName: "octo/alpha", Stars: 200, Forks: 1},
		{GithubRepoID: 2, OwnerUsername: "octo", Name: "beta", FullName: "octo/beta", Stars: 300, Forks: 2},
		{GithubRepoID: 3, OwnerUsername: "octo", Name: "gamma", FullName: "octo/gamma", Stars: 100, Forks: 3},
	}
}

func tenPublicGists() []model.Gist {
	gists := make([]model.Gist, 0, 11)
	for i := 0; i < 10; i++ {
		gists = append(gists, model.Gist{ID: fmt.Sprintf("g%d", i), Public: true})
	}
	return append(gists, model.Gist{ID: "secret", Public: false})
}

// expectFullFetch registers a complete, healthy set of upstream answers for octo.
func expectFullFetch(up *MockUpstream) {
	up.On("GetUser", mock.Anything, "octo").Return(&model.GitHubUser{
		Login: "octo", Name: "Octo Cat", Location: "Berlin", Followers: 7, PublicRepos: 3,
	}, nil)
	up.On("ListUserRepos", mock.Anything, "octo").Return(threeRepos(), nil)
	up.On("ListUserEvents", mock.Anything, "octo").Return([]model.Event{
		{Type: model.PushEventType, CreatedAt: testNow.Add(-time.Hour), CommitCount: 20},
		{Type: model.PushEventType, CreatedAt: testNow.Add(-commitWindow + time.Minute), CommitCount: 5},
		{Type: model.PushEventType, CreatedAt: testNow.Add(-commitWindow), CommitCount: 100},
		{Type: model.PushEventType, CreatedAt: testNow.Add(-8 * 24 * time.Hour), CommitCount: 100},
		{Type: "WatchEvent", CreatedAt: testNow.Add(-time.Hour)},
	}, nil)
	up.On("ListUserGists", mock.Anything, "octo").Return(tenPublicGists(), nil)
	up.On("ListUserOrgs", mock.Anything, "octo").Return([]model.Organization{{Login: "acme"}}, nil)
	up.On("ListRepoLanguages", mock.Anything, "octo", "alpha").Return(map[string]int64{"Go": 1000}, nil)
	up.On("ListRepoLanguages", mock.Anything, "octo", "beta").Return(map[string]int64{"Python": 500, "Go": 100}, nil)
	up.On("ListRepoLanguages", mock.Anything, "octo", "gamma").Return(map[string]int64{"Rust": 500}, nil)
}

// captureRepos records every repository upsert.
func captureRepos(st *MockStore, fail map[int64]error) *[]model.Repository {
	var (
		mu    sync.Mutex
		saved []model.Repository
	)
	st.On("UpsertRepository", mock.Anything, mock.AnythingOfType("*model.Repository")).
		Return(func(_ context.Context, repo *model.Repository) error {
			mu.Lock()
			defer mu.Unlock()
			saved = append(saved, *repo)
			return fail[repo.GithubRepoID]
		})
	return &saved
}

func TestSyncer_SyncUser_FullSync(t *testing.T) {
	ctx := context.Background()
	up, st := new(MockUpstream), new(MockStore)
	s, m := newTestSyncer(t, up, st, Options{})

	expectFullFetch(up)
	st.On("GetDeveloper", mock.Anything, "octo").Return(nil, custom_errors.ErrNotFound).Once()
	saved := captureRepos(st, nil)
	var stored *model.Developer
	st.On("UpsertDeveloper", mock.Anything, mock.AnythingOfType("*model.Developer")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*model.Developer) }).
		Return(nil).Once()

	dev, err := s.SyncUser(ctx, "octo")

	require.NoError(t, err)
	assert.Same(t, stored, dev)
	assert.Equal(t, model.Stats{
		TotalStars:       600,
		TotalForks:       6,
		TotalFollowers:   7,
		WeeklyCommits:    25,
		PublicRepoCount:  3,
		PublicGistsCount: 10,
	}, dev.Stats)
	assert.Equal(t, 600*4+6*2+25*3+7*1, dev.Score)
	assert.Equal(t, []string{"Go", "Python", "Rust"}, dev.Languages)
	assert.Len(t, dev.Badges, len(scoring.Kinds()))
	assert.Equal(t, "Octo Cat", dev.Name)
	assert.Equal(t, "Berlin", dev.Country)
	assert.Equal(t, emptyBio, dev.Bio)
	assert.Equal(t, testNow, dev.LastSyncedAt)

	require.Len(t, *saved, 3)
	for _, repo := range *saved {
		assert.Equal(t, "octo", repo.OwnerUsername)
		assert.Equal(t, testNow, repo.LastSyncedAt)
		assert.NotNil(t, repo.Languages)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Syncs.WithLabelValues(metrics.ResultSynced)))
	st.AssertNotCalled(t, "PruneRepositories", mock.Anything, mock.Anything, mock.Anything)
	up.AssertExpectations(t)
	st.AssertExpectations(t)
}

func TestSyncer_SyncUser_Staleness(t *testing.T) {
	testCases := []struct {
		name       string
		age        time.Duration
		expectSync bool
	}{
		{name: "synced 23h59m ago is served from cache", age: 23*time.Hour + 59*time.Minute, expectSync: false},
		{name: "synced 24h01m ago is refreshed", age: 24*time.Hour + time.Minute, expectSync: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			up, st := new(MockUpstream), new(MockStore)
			s, m := newTestSyncer(t, up, st, Options{})

			cached := &model.Developer{Username: "octo", Score: 1, LastSyncedAt: testNow.Add(-tc.age)}
			st.On("GetDeveloper", mock.Anything, "octo").Return(cached, nil).Once()
			if tc.expectSync {
				expectFullFetch(up)
				captureRepos(st, nil)
				st.On("UpsertDeveloper", mock.Anything, mock.Anything).Return(nil).Once()
			}

			dev, err := s.SyncUser(ctx, "octo")

			require.NoError(t, err)
			if tc.expectSync {
				assert.NotSame(t, cached, dev)
				assert.Equal(t, testNow, dev.LastSyncedAt)
				up.AssertCalled(t, "GetUser", mock.Anything, "octo")
			} else {
				assert.Same(t, cached, dev)
				assert.Empty(t, up.Calls, "a cache hit must not reach GitHub")
				assert.Equal(t, 1.0, testutil.ToFloat64(m.Syncs.WithLabelValues(metrics.ResultCached)))
			}
			st.AssertExpectations(t)
		})
	}
}

func TestSyncer_SyncUser_SecondRunWithinWindowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	up, st := new(MockUpstream), new(MockStore)
	s, _ := newTestSyncer(t, up, st, Options{})

	expectFullFetch(up)
	captureRepos(st, nil)
	var stored *model.Developer
	st.On("GetDeveloper", mock.Anything, "octo").Return(nil, custom_errors.ErrNotFound).Once()
	st.On("UpsertDeveloper", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*model.Developer) }).
		Return(nil).Once()

	first, err := s.SyncUser(ctx, "octo")
	require.NoError(t, err)
	callsAfterFirst := len(up.Calls)

	st.On("GetDeveloper", mock.Anything, "octo").Return(stored, nil).Once()
	second, err := s.SyncUser(ctx, "octo")

	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, up.Calls, callsAfterFirst)
}

func TestSyncer_SyncUser_ProfileFailure(t *testing.T) {
	ctx := context.Background()
	up, st := new(MockUpstream), new(MockStore)
	s, m := newTestSyncer(t, up, st, Options{})

	st.On("GetDeveloper", mock.Anything, "ghost").Return(nil, custom_errors.ErrNotFound).Once()
	up.On("GetUser", mock.Anything, "ghost").Return(nil, fmt.Errorf("%w: ghost", custom_errors.ErrUserNotFound))
	up.On("ListUserRepos", mock.Anything, "ghost").Return(nil, nil).Maybe()
	up.On("ListUserEvents", mock.Anything, "ghost").Return(nil, nil).Maybe()
	up.On("ListUserGists", mock.Anything, "ghost").Return(nil, nil).Maybe()
	up.On("ListUserOrgs", mock.Anything, "ghost").Return(nil, nil).Maybe()

	dev, err := s.SyncUser(ctx, "ghost")

	assert.Nil(t, dev)
	assert.ErrorIs(t, err, custom_errors.ErrUserNotFound)
	var syncErr *custom_errors.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, StageProfile, syncErr.Stage)
	st.AssertNotCalled(t, "UpsertRepository", mock.Anything, mock.Anything)
	st.AssertNotCalled(t, "UpsertDeveloper", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Syncs.WithLabelValues(metrics.ResultFailed)))
}

func TestSyncer_SyncUser_LanguageFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	up, st := new(MockUpstream), new(MockStore)
	s, m := newTestSyncer(t, up, st, Options{})

	up.On("GetUser", mock.Anything, "octo").Return(&model.GitHubUser{Login: "octo"}, nil)
	up.On("ListUserRepos", mock.Anything, "octo").Return(threeRepos(), nil)
	up.On("ListUserEvents", mock.Anything, "octo").Return([]model.Event{}, nil)
	up.On("ListUserGists", mock.Anything, "octo").Return([]model.Gist{}, nil)
	up.On("ListUserOrgs", mock.Anything, "octo").Return([]model.Organization{}, nil)
	up.On("ListRepoLanguages", mock.Anything, "octo", "alpha").Return(map[string]int64{"Go": 1000}, nil)
	up.On("ListRepoLanguages", mock.Anything, "octo", "beta").Return(nil, custom_errors.ErrUpstreamUnavailable)
	up.On("ListRepoLanguages", mock.Anything, "octo", "gamma").Return(map[string]int64{"Rust": 500}, nil)

	st.On("GetDeveloper", mock.Anything, "octo").Return(nil, custom_errors.ErrNotFound).Once()
	saved := captureRepos(st, nil)
	st.On("UpsertDeveloper", mock.Anything, mock.Anything).Return(nil).Once()

	dev, err := s.SyncUser(ctx, "octo")

	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Rust"}, dev.Languages)
	require.Len(t, *saved, 3)
	for _, repo := range *saved {
		if repo.Name == "beta" {
			assert.Equal(t, map[string]int64{}, repo.Languages)
		}
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFailures.WithLabelValues(StageLanguages)))
}

func TestSyncer_SyncUser_SecondaryFetchesDegrade(t *testing.T) {
	ctx := context.Background()
	up, st := new(MockUpstream), new(MockStore)
	s, m := newTestSyncer(t, up, st, Options{})

	up.On("GetUser", mock.Anything, "octo").Return(&model.GitHubUser{Login: "octo", Followers: 3}, nil)
	up.On("ListUserRepos", mock.Anything, "octo").Return(nil, custom_errors.ErrUpstreamUnavailable)
	up.On("ListUserEvents", mock.Anything, "octo").Return(nil, custom_errors.ErrUpstreamUnavailable)
	up.On("ListUserGists", mock.Anything, "octo").Return(nil, custom_errors.ErrUpstreamUnavailable)
	up.On("ListUserOrgs", mock.Anything, "octo").Return(nil, custom_errors.ErrUpstreamUnavailable)
	st.On("GetDeveloper", mock.Anything, "octo").Return(nil, custom_errors.ErrNotFound).Once()
	st.On("UpsertDeveloper", mock.Anything, mock.Anything).Return(nil).Once()

	dev, err := s.SyncUser(ctx, "octo")

	require.NoError(t, err)
	assert.Equal(t, model.Stats{TotalFollowers: 3}, dev.Stats)
	assert.Equal(t, 3, dev.Score)
	assert.Empty(t, dev.Badges)
	assert.NotNil(t, dev.Organizations)
	for _, stage := range []string{StageRepos, StageEvents, StageGists, StageOrgs} {
		assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFailures.WithLabelValues(stage)), stage)
	}
	st.AssertNotCalled(t, "UpsertRepository", mock.Anything, mock.Anything)
}

func TestSyncer_SyncUser_RepositoryUpsertFailure(t *testing.T) {
	ctx := context.Background()
	up, st := new(MockUpstream), new(MockStore)
	s, _ := newTestSyncer(t, up, st, Options{})

	expectFullFetch(up)
	st.On("GetDeveloper", mock.Anything, "octo").Return(nil, custom_errors.ErrNotFound).Once()
	saved := captureRepos(st, map[int64]error{2: errors.New("disk full")})

	dev, err := s.SyncUser(ctx, "octo")

	assert.Nil(t, dev)
	assert.ErrorIs(t, err, custom_errors.ErrPersistence)
	var syncErr *custom_errors.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, StagePersistRepos, syncErr.Stage)
	assert.Len(t, *saved, 3, "the other repositories are still written")
	st.AssertNotCalled(t, "UpsertDeveloper", mock.Anything, mock.Anything)
}

func TestSyncer_SyncUser_ProfileUpsertFailure(t *testing.T) {
	ctx := context.Background()
	up, st := new(MockUpstream), new(MockStore)
	s, _ := newTestSyncer(t, up, st, Options{})

	expectFullFetch(up)
	st.On("GetDeveloper", mock.Anything, "octo").Return(nil, custom_errors.ErrNotFound).Once()
	captureRepos(st, nil)
	st.On("UpsertDeveloper", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

	_, err := s.SyncUser(ctx, "octo")

	assert.ErrorIs(t, err, custom_errors.ErrPersistence)
	var syncErr *custom_errors.SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, StagePersistProfile, syncErr.Stage)
}

func TestSyncer_SyncUser_Prune(t *testing.T) {
	t.Run("prunes repositories missing from a complete listing", func(t *testing.T) {
		ctx := context.Background()
		up, st := new(MockUpstream), new(MockStore)
		s, _ := newTestSyncer(t, up, st, Options{PruneStaleRepos: true})

		expectFullFetch(up)
		st.On("GetDeveloper", mock.Anything, "octo").Return(nil, custom_errors.ErrNotFound).Once()
		captureRepos(st, nil)
		st.On("PruneRepositories", mock.Anything, "octo", []int64{1, 2, 3}).Return(int64(2), nil).Once()
		st.On("UpsertDeveloper", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := s.SyncUser(ctx, "octo")

		require.NoError(t, err)
		st.AssertExpectations(t)
	})

	t.Run("skips the prune after a partial listing", func(t *testing.T) {
		ctx := context.Background()
		up, st := new(MockUpstream), new(MockStore)
		s, _ := newTestSyncer(t, up, st, Options{PruneStaleRepos: true})

		partial := threeRepos()[:1]
		up.On("GetUser", mock.Anything, "octo").Return(&model.GitHubUser{Login: "octo"}, nil)
		up.On("ListUserRepos", mock.Anything, "octo").Return(partial, custom_errors.ErrUpstreamUnavailable)
		up.On("ListUserEvents", mock.Anything, "octo").Return([]model.Event{}, nil)
		up.On("ListUserGists", mock.Anything, "octo").Return([]model.Gist{}, nil)
		up.On("ListUserOrgs", mock.Anything, "octo").Return([]model.Organization{}, nil)
		up.On("ListRepoLanguages", mock.Anything, "octo", "alpha").Return(map[string]int64{"Go": 1}, nil)
		st.On("GetDeveloper", mock.Anything, "octo").Return(nil, custom_errors.ErrNotFound).Once()
		saved := captureRepos(st, nil)
		st.On("UpsertDeveloper", mock.Anything, mock.Anything).Return(nil).Once()

		dev, err := s.SyncUser(ctx, "octo")

		require.NoError(t, err)
		assert.Equal(t, 200, dev.Stats.TotalStars)
		assert.Len(t, *saved, 1)
		st.AssertNotCalled(t, "PruneRepositories", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSyncer_SyncUserForce(t *testing.T) {
	ctx := context.Background()
	up, st := new(MockUpstream), new(MockStore)
	s, _ := newTestSyncer(t, up, st, Options{})

	expectFullFetch(up)
	captureRepos(st, nil)
	st.On("UpsertDeveloper", mock.Anything, mock.Anything).Return(nil).Once()

	dev, err := s.SyncUserForce(ctx, "octo")

	require.NoError(t, err)
	assert.Equal(t, testNow, dev.LastSyncedAt)
	st.AssertNotCalled(t, "GetDeveloper", mock.Anything, mock.Anything)
}

func TestSyncer_SyncUser_CacheReadFailureStillSyncs(t *testing.T) {
	ctx := context.Background()
	up, st := new(MockUpstream), new(MockStore)
	s, _ := newTestSyncer(t, up, st, Options{})

	expectFullFetch(up)
	st.On("GetDeveloper", mock.Anything, "octo").Return(nil, errors.New("timeout")).Once()
	captureRepos(st, nil)
	st.On("UpsertDeveloper", mock.Anything, mock.Anything).Return(nil).Once()

	dev, err := s.SyncUser(ctx, "octo")

	require.NoError(t, err)
	assert.Equal(t, "octo", dev.Username)
}

func TestSyncer_SyncUser_InvalidUsername(t *testing.T) {
	up, st := new(MockUpstream), new(MockStore)
	s, _ := newTestSyncer(t, up, st, Options{})

	_, err := s.SyncUser(context.Background(), "not a user")

	var invalid *custom_errors.ErrInvalidUsername
	assert.ErrorAs(t, err, &invalid)
	assert.Empty(t, up.Calls)
	assert.Empty(t, st.Calls)
}

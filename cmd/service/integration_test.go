//go:build integration

// cmd/service/integration_test.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"dev-leaderboard/internal/api"
	"dev-leaderboard/internal/app"
	"dev-leaderboard/internal/github"
	"dev-leaderboard/internal/metrics"
	"dev-leaderboard/internal/model"
	"dev-leaderboard/internal/store"
	"dev-leaderboard/internal/syncer"
)

func setupTestStore(ctx context.Context, t *testing.T) store.Store {
	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, testcontainers.TerminateContainer(pgContainer)) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, app.RunMigrations("file://../../migrations", connStr))

	s, err := store.NewPostgres(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// fakeGitHub serves one user, "octo", with two repositories and a recent push.
func fakeGitHub(t *testing.T) *httptest.Server {
	pushedAt := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)

	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login": "octo", "name": "Octo Cat", "avatar_url": "https://a/octo.png",
			"location": "Berlin", "bio": "", "followers": 50, "public_repos": 2, "public_gists": 0}`)
	})
	mux.HandleFunc("/users/octo/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"id": 1, "name": "alpha", "full_name": "octo/alpha", "owner": {"login": "octo"}, "stargazers_count": 10, "forks_count": 2, "language": "Go", "html_url": "https://github.com/octo/alpha"},
			{"id": 2, "name": "beta", "full_name": "octo/beta", "owner": {"login": "octo"}, "stargazers_count": 5, "forks_count": 1, "html_url": "https://github.com/octo/beta"}
		]`)
	})
	mux.HandleFunc("/users/octo/events", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"id": "1", "type": "PushEvent", "created_at": %q, "payload": {"size": 3, "commits": []}}]`, pushedAt)
	})
	mux.HandleFunc("/users/octo/gists", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("/users/octo/orgs", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"login": "acme", "avatar_url": "https://a/acme.png"}]`)
	})
	mux.HandleFunc("/repos/octo/alpha/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Go": 900, "Shell": 100}`)
	})
	mux.HandleFunc("/repos/octo/beta/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Python": 500}`)
	})
	mux.HandleFunc("/search/users", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count": 1, "incomplete_results": false, "items": [{"login": "octo"}]}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestService_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	st := setupTestStore(ctx, t)

	ghClient, err := github.NewClient("", logger)
	require.NoError(t, err)
	require.NoError(t, ghClient.SetBaseURL(fakeGitHub(t).URL))

	reg := prometheus.NewRegistry()
	s := syncer.NewSyncer(ghClient, st, logger, metrics.New(reg), syncer.Options{
		StaleAfter:          24 * time.Hour,
		LanguageConcurrency: 2,
		PruneStaleRepos:     true,
		SeedQuery:           "followers:>10",
		SeedCount:           5,
		SeedDelay:           time.Millisecond,
	})

	router := api.NewRouter(api.Deps{
		Store:    st,
		Syncer:   s,
		Upstream: ghClient,
		Gatherer: reg,
		Logger:   logger,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// The first leaderboard read seeds the empty store from search.
	resp, err := http.Get(server.URL + "/api/leaderboard")
	require.NoError(t, err)
	var page model.LeaderboardPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, page.Developers, 1)

	dev := page.Developers[0]
	assert.Equal(t, "octo", dev.Username)
	assert.Equal(t, 1, dev.Rank)
	// 15 stars * 4 + 3 forks * 2 + 3 commits * 3 + 50 followers
	assert.Equal(t, 125, dev.Score)
	assert.Equal(t, []string{"Go", "Python", "Shell"}, dev.Languages)
	assert.Equal(t, "No bio available.", dev.Bio)

	// Lookups are case-insensitive.
	resp, err = http.Get(server.URL + "/api/users/OCTO")
	require.NoError(t, err)
	var stored model.Developer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stored))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stored.Rank)
	assert.Equal(t, []model.Organization{{Login: "acme", AvatarURL: "https://a/acme.png"}}, stored.Organizations)

	resp, err = http.Get(server.URL + "/api/users/octo/repos")
	require.NoError(t, err)
	var repos []model.ProfileRepository
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&repos))
	resp.Body.Close()
	require.Len(t, repos, 2)
	assert.Equal(t, "alpha", repos[0].Name)

	// A second sync inside the staleness window is served from the store.
	resp, err = http.Post(server.URL+"/api/sync/octo", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/users/ghost")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// internal/api/handler.go
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	custom_errors "dev-leaderboard/internal/errors"
	"dev-leaderboard/internal/github"
	"dev-leaderboard/internal/insights"
	"dev-leaderboard/internal/model"
	"dev-leaderboard/internal/ranking"
	"dev-leaderboard/internal/scoring"
	"dev-leaderboard/internal/syncer"
)

const (
	profileRepoLimit      = 6
	defaultSearchPerPage  = 20
	requestTimeout        = 2 * time.Minute
	notSyncedErrorMessage = "User not found in database. Please sync first."
)

// Store is the read side of the persistence layer.
type Store interface {
	GetDeveloper(ctx context.Context, username string) (*model.Developer, error)
	CountDevelopers(ctx context.Context) (int64, error)
	ListDevelopers(ctx context.Context, offset, limit int) ([]model.Developer, error)
	CountDevelopersAbove(ctx context.Context, score int) (int64, error)
	ListScores(ctx context.Context) ([]int, error)
	ListTopRepositories(ctx context.Context, owner string, limit int) ([]model.Repository, error)
}

// Syncer triggers profile refreshes and dynamic seeding.
type Syncer interface {
	SyncUser(ctx context.Context, username string) (*model.Developer, error)
	SeedIfEmpty(ctx context.Context) (syncer.SeedReport, error)
}

// InsightsGenerator produces the narrative for a profile.
type InsightsGenerator interface {
	Generate(ctx context.Context, req insights.Request) (*model.Insights, error)
}

// Upstream is the part of the GitHub client served directly.
type Upstream interface {
	SearchUsers(ctx context.Context, query string, page, perPage int) (*model.SearchResult, error)
	ListContributors(ctx context.Context, owner, name string) ([]model.Contributor, error)
}

// Deps holds everything the router needs. Insights and ContributorsRepo may be nil.
type Deps struct {
	Store              Store
	Syncer             Syncer
	Insights           InsightsGenerator
	Upstream           Upstream
	ContributorsRepo   *github.RepoIdentifier
	Gatherer           prometheus.Gatherer
	CORSAllowedOrigins []string
	Logger             *slog.Logger
}

// Handler is the container for API dependencies.
type Handler struct {
	store            Store
	syncer           Syncer
	insights         InsightsGenerator
	upstream         Upstream
	contributorsRepo *github.RepoIdentifier
	logger           *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(d Deps) http.Handler {
	h := &Handler{
		store:            d.Store,
		syncer:           d.Syncer,
		insights:         d.Insights,
		upstream:         d.Upstream,
		contributorsRepo: d.ContributorsRepo,
		logger:           d.Logger,
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: d.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	r.Get("/health", h.healthCheck)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", h.getLeaderboard)
		r.Get("/leaderboard/summary", h.getSummary)
		r.Get("/users/{username}", h.getUser)
		r.Get("/users/{username}/repos", h.getUserRepos)
		r.Post("/users/{username}/insights", h.postInsights)
		r.Post("/sync/{username}", h.postSync)
		r.Get("/search", h.searchUsers)
		r.Get("/contributors", h.getContributors)
		r.Get("/badges", h.getBadges)
		r.Get("/badges/{id}", h.getBadge)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getLeaderboard returns one page of developers ordered by score, seeding an
// empty store first.
// GET /api/leaderboard?page=N&perPage=M
func (h *Handler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page", 1, 1, 0)
	if err != nil {
		respondWithErrorDetails(w, http.StatusBadRequest, "Invalid query parameter", err.Error())
		return
	}
	perPage, err := intParam(r, "perPage", ranking.DefaultPerPage, 1, ranking.MaxPerPage)
	if err != nil {
		respondWithErrorDetails(w, http.StatusBadRequest, "Invalid query parameter", err.Error())
		return
	}

	if report, err := h.syncer.SeedIfEmpty(r.Context()); err != nil {
		h.logger.Error("Dynamic seeding failed", "error", err)
	} else if report.Candidates > 0 {
		h.logger.Info("Dynamic seeding completed", "succeeded", report.Succeeded, "failed", report.Failed)
	}

	total, err := h.store.CountDevelopers(r.Context())
	if err != nil {
		h.logger.Error("Failed to count developers", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if page > ranking.TotalPages(total, perPage) {
		respondWithJSON(w, http.StatusOK, ranking.NewPage(nil, total, page, perPage))
		return
	}

	devs, err := h.store.ListDevelopers(r.Context(), ranking.Offset(page, perPage), perPage)
	if err != nil {
		h.logger.Error("Failed to list developers", "page", page, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, ranking.NewPage(devs, total, page, perPage))
}

// getSummary describes the score distribution.
// GET /api/leaderboard/summary
func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	scores, err := h.store.ListScores(r.Context())
	if err != nil {
		h.logger.Error("Failed to list scores", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	summary, err := ranking.Summarize(scores)
	if err != nil {
		h.logger.Error("Failed to summarize scores", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// getUser returns a stored profile with its global rank. Profiles are never
// synced implicitly here.
// GET /api/users/{username}
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	username, ok := h.usernameParam(w, r)
	if !ok {
		return
	}

	dev, err := h.store.GetDeveloper(r.Context(), username)
	if err != nil {
		if errors.Is(err, custom_errors.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, notSyncedErrorMessage)
			return
		}
		h.logger.Error("Failed to get developer", "username", username, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	higher, err := h.store.CountDevelopersAbove(r.Context(), dev.Score)
	if err != nil {
		h.logger.Warn("Failed to compute global rank", "username", username, "error", err)
	} else {
		dev.Rank = ranking.GlobalRank(higher)
	}

	respondWithJSON(w, http.StatusOK, dev)
}

// getUserRepos returns the most starred repositories of a user.
// GET /api/users/{username}/repos
func (h *Handler) getUserRepos(w http.ResponseWriter, r *http.Request) {
	username, ok := h.usernameParam(w, r)
	if !ok {
		return
	}

	repos, err := h.store.ListTopRepositories(r.Context(), username, profileRepoLimit)
	if err != nil {
		h.logger.Error("Failed to list repositories", "username", username, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]model.ProfileRepository, 0, len(repos))
	for _, repo := range repos {
		out = append(out, repo.Public())
	}
	respondWithJSON(w, http.StatusOK, out)
}

// postSync refreshes a profile unless it is still fresh.
// POST /api/sync/{username}
func (h *Handler) postSync(w http.ResponseWriter, r *http.Request) {
	username, ok := h.usernameParam(w, r)
	if !ok {
		return
	}

	dev, err := h.syncer.SyncUser(r.Context(), username)
	if err != nil {
		h.logger.Error("Sync failed", "username", username, "error", err)
		respondWithDomainError(w, err, fmt.Sprintf("Failed to sync data for %s", username))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Successfully synced data for %s", dev.Username),
		"user":    dev,
	})
}

// postInsights generates insights for a stored profile.
// POST /api/users/{username}/insights
func (h *Handler) postInsights(w http.ResponseWriter, r *http.Request) {
	if h.insights == nil {
		respondWithDomainError(w, custom_errors.ErrInsightsUnavailable, "Insights are not available")
		return
	}
	username, ok := h.usernameParam(w, r)
	if !ok {
		return
	}

	dev, err := h.store.GetDeveloper(r.Context(), username)
	if err != nil {
		if errors.Is(err, custom_errors.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, notSyncedErrorMessage)
			return
		}
		h.logger.Error("Failed to get developer", "username", username, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	result, err := h.insights.Generate(r.Context(), insights.Request{
		Username:    dev.Username,
		Stats:       dev.Stats,
		BadgeTitles: scoring.Titles(dev.Badges),
	})
	if err != nil {
		respondWithDomainError(w, err, "Failed to generate insights")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// searchUsers proxies a GitHub user search.
// GET /api/search?q=&location=&language=&org=&minFollowers=&page=&perPage=
func (h *Handler) searchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minFollowers, err := intParam(r, "minFollowers", 0, 0, 0)
	if err != nil {
		respondWithErrorDetails(w, http.StatusBadRequest, "Invalid query parameter", err.Error())
		return
	}
	page, err := intParam(r, "page", 1, 1, 0)
	if err != nil {
		respondWithErrorDetails(w, http.StatusBadRequest, "Invalid query parameter", err.Error())
		return
	}
	perPage, err := intParam(r, "perPage", defaultSearchPerPage, 1, ranking.MaxPerPage)
	if err != nil {
		respondWithErrorDetails(w, http.StatusBadRequest, "Invalid query parameter", err.Error())
		return
	}

	query := github.SearchQuery{
		Text:         q.Get("q"),
		MinFollowers: minFollowers,
		Location:     q.Get("location"),
		Language:     q.Get("language"),
		Org:          q.Get("org"),
	}
	if query.IsEmpty() {
		respondWithError(w, http.StatusBadRequest, "At least one of q, location, language, org or minFollowers is required.")
		return
	}
	query.Type = "user"

	result, err := h.upstream.SearchUsers(r.Context(), query.String(), page, perPage)
	if err != nil {
		h.logger.Error("User search failed", "query", query.String(), "error", err)
		respondWithDomainError(w, err, "Search failed")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// getContributors lists the human contributors of the configured repository.
// GET /api/contributors
func (h *Handler) getContributors(w http.ResponseWriter, r *http.Request) {
	if h.contributorsRepo == nil {
		respondWithError(w, http.StatusNotFound, "No contributors repository configured")
		return
	}

	all, err := h.upstream.ListContributors(r.Context(), h.contributorsRepo.Owner, h.contributorsRepo.Name)
	if err != nil {
		h.logger.Error("Failed to list contributors", "repo", h.contributorsRepo.String(), "error", err)
		respondWithDomainError(w, err, "Failed to list contributors")
		return
	}

	humans := make([]model.Contributor, 0, len(all))
	for _, c := range all {
		if !c.IsBot() {
			humans = append(humans, c)
		}
	}
	respondWithJSON(w, http.StatusOK, humans)
}

// getBadges lists every badge that can be awarded.
// GET /api/badges
func (h *Handler) getBadges(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, scoring.Catalog())
}

// getBadge returns one badge definition.
// GET /api/badges/{id}
func (h *Handler) getBadge(w http.ResponseWriter, r *http.Request) {
	kind, ok := scoring.Lookup(chi.URLParam(r, "id"))
	if !ok {
		respondWithError(w, http.StatusNotFound, "Badge not found")
		return
	}
	respondWithJSON(w, http.StatusOK, kind.Badge())
}

func (h *Handler) usernameParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	username := chi.URLParam(r, "username")
	if err := github.ValidateUsername(username); err != nil {
		respondWithErrorDetails(w, http.StatusBadRequest, "Invalid 'username' parameter", err.Error())
		return "", false
	}
	return username, true
}

// intParam reads an optional integer query parameter. hi <= 0 means unbounded.
func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || (hi > 0 && v > hi) {
		if hi > 0 {
			return 0, fmt.Errorf("%s must be an integer between %d and %d", name, lo, hi)
		}
		return 0, fmt.Errorf("%s must be an integer of at least %d", name, lo)
	}
	return v, nil
}

// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	custom_errors "dev-leaderboard/internal/errors"
	"dev-leaderboard/internal/model"
)

const (
	// maxRetries is the total number of attempts for a retryable request.
	maxRetries = 3
	// maxRateLimitWait caps how long a request waits for a rate limit reset.
	maxRateLimitWait = time.Minute

	reposPerPage        = 100
	maxRepoPages        = 5
	eventsPerPage       = 100
	gistsPerPage        = 100
	orgsPerPage         = 100
	contributorsPerPage = 100
)

// Client is a wrapper around the go-github client.
type Client struct {
	gh         *github.Client
	logger     *slog.Logger
	newBackOff func() backoff.BackOff
}

// NewClient creates and configures a new Client instance.
// Secondary rate limits are waited out by the transport. An empty token is
// allowed but leaves the client on the unauthenticated rate limit.
func NewClient(token string, logger *slog.Logger) (*Client, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(maxRateLimitWait, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	var transport http.RoundTripper = rateLimitWaiter
	if token == "" {
		logger.Warn("GITHUB_TOKEN is not set; GitHub requests are unauthenticated and heavily rate limited")
	} else {
		transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
		}
	}

	return &Client{
		gh:         github.NewClient(&http.Client{Transport: transport}),
		logger:     logger,
		newBackOff: defaultBackOff,
	}, nil
}

// SetBaseURL points the client at a different API root, e.g. GitHub Enterprise or a test server.
func (c *Client) SetBaseURL(rawURL string) error {
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	c.gh.BaseURL = u
	return nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}

// GetUser fetches a user profile.
func (c *Client) GetUser(ctx context.Context, username string) (*model.GitHubUser, error) {
	var user *github.User
	err := c.call(ctx, "get_user", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		user, resp, err = c.gh.Users.Get(ctx, username)
		return resp, err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", custom_errors.ErrUserNotFound, username)
		}
		return nil, upstreamError("get user", err)
	}
	if user.GetLogin() == "" {
		return nil, fmt.Errorf("%w: %s: profile has no login", custom_errors.ErrUserNotFound, username)
	}
	return toInternalUser(user), nil
}

// ListUserRepos fetches the repositories a user owns, most recently updated
// first, up to five pages of 100. A failing page stops the listing; the
// repositories gathered so far are returned alongside the error.
func (c *Client) ListUserRepos(ctx context.Context, username string) ([]model.Repository, error) {
	var allRepos []model.Repository

	opts := &github.RepositoryListByUserOptions{
		Type:        "owner",
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: reposPerPage},
	}

	for page := 1; page <= maxRepoPages; page++ {
		opts.Page = page
		c.logger.Debug("Fetching repositories page", "username", username, "page", page)

		var repos []*github.Repository
		err := c.call(ctx, "list_repos", func() (*github.Response, error) {
			var (
				resp *github.Response
				err  error
			)
			repos, resp, err = c.gh.Repositories.ListByUser(ctx, username, opts)
			return resp, err
		})
		if err != nil {
			return allRepos, upstreamError(fmt.Sprintf("list repos page %d", page), err)
		}

		for _, r := range repos {
			allRepos = append(allRepos, toInternalRepository(r))
		}
		if len(repos) < reposPerPage {
			break
		}
	}

	return allRepos, nil
}

// ListUserEvents fetches the 100 most recent activity events of a user.
func (c *Client) ListUserEvents(ctx context.Context, username string) ([]model.Event, error) {
	var events []*github.Event
	err := c.call(ctx, "list_events", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		events, resp, err = c.gh.Activity.ListEventsPerformedByUser(ctx, username, false, &github.ListOptions{PerPage: eventsPerPage})
		return resp, err
	})
	if err != nil {
		return nil, upstreamError("list events", err)
	}

	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		out = append(out, c.toInternalEvent(e))
	}
	return out, nil
}

// ListUserGists fetches up to 100 gists of a user.
func (c *Client) ListUserGists(ctx context.Context, username string) ([]model.Gist, error) {
	var gists []*github.Gist
	err := c.call(ctx, "list_gists", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		gists, resp, err = c.gh.Gists.List(ctx, username, &github.GistListOptions{ListOptions: github.ListOptions{PerPage: gistsPerPage}})
		return resp, err
	})
	if err != nil {
		return nil, upstreamError("list gists", err)
	}

	out := make([]model.Gist, 0, len(gists))
	for _, g := range gists {
		out = append(out, model.Gist{ID: g.GetID(), Public: g.GetPublic()})
	}
	return out, nil
}

// ListUserOrgs fetches the public organization memberships of a user.
func (c *Client) ListUserOrgs(ctx context.Context, username string) ([]model.Organization, error) {
	var orgs []*github.Organization
	err := c.call(ctx, "list_orgs", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		orgs, resp, err = c.gh.Organizations.List(ctx, username, &github.ListOptions{PerPage: orgsPerPage})
		return resp, err
	})
	if err != nil {
		return nil, upstreamError("list orgs", err)
	}

	out := make([]model.Organization, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, model.Organization{Login: o.GetLogin(), AvatarURL: o.GetAvatarURL()})
	}
	return out, nil
}

// ListRepoLanguages fetches the language byte histogram of a repository.
func (c *Client) ListRepoLanguages(ctx context.Context, owner, name string) (map[string]int64, error) {
	var langs map[string]int
	err := c.call(ctx, "list_languages", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		langs, resp, err = c.gh.Repositories.ListLanguages(ctx, owner, name)
		return resp, err
	})
	if err != nil {
		return nil, upstreamError(fmt.Sprintf("list languages of %s/%s", owner, name), err)
	}

	out := make(map[string]int64, len(langs))
	for lang, bytes := range langs {
		out[lang] = int64(bytes)
	}
	return out, nil
}

// ListContributors fetches up to 100 contributors of a repository.
func (c *Client) ListContributors(ctx context.Context, owner, name string) ([]model.Contributor, error) {
	var contributors []*github.Contributor
	err := c.call(ctx, "list_contributors", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		contributors, resp, err = c.gh.Repositories.ListContributors(ctx, owner, name, &github.ListContributorsOptions{
			ListOptions: github.ListOptions{PerPage: contributorsPerPage},
		})
		return resp, err
	})
	if err != nil {
		return nil, upstreamError(fmt.Sprintf("list contributors of %s/%s", owner, name), err)
	}

	out := make([]model.Contributor, 0, len(contributors))
	for _, ct := range contributors {
		out = append(out, model.Contributor{
			Login:         ct.GetLogin(),
			AvatarURL:     ct.GetAvatarURL(),
			HTMLURL:       ct.GetHTMLURL(),
			Contributions: ct.GetContributions(),
			Type:          ct.GetType(),
		})
	}
	return out, nil
}

// SearchUsers runs a GitHub user search. page is 1-based.
func (c *Client) SearchUsers(ctx context.Context, query string, page, perPage int) (*model.SearchResult, error) {
	var result *github.UsersSearchResult
	err := c.call(ctx, "search_users", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		result, resp, err = c.gh.Search.Users(ctx, query, &github.SearchOptions{
			ListOptions: github.ListOptions{Page: page, PerPage: perPage},
		})
		return resp, err
	})
	if err != nil {
		return nil, upstreamError("search users", err)
	}

	out := &model.SearchResult{
		TotalCount: result.GetTotal(),
		Incomplete: result.GetIncompleteResults(),
		Users:      make([]model.SearchUser, 0, len(result.Users)),
	}
	for _, u := range result.Users {
		out.Users = append(out.Users, model.SearchUser{
			Login:     u.GetLogin(),
			AvatarURL: u.GetAvatarURL(),
			HTMLURL:   u.GetHTMLURL(),
		})
	}
	return out, nil
}

// call runs fn with retries. Server errors and transport failures are retried
// with backoff; a primary rate limit waits for its reset first; other client
// errors fail immediately.
func (c *Client) call(ctx context.Context, op string, fn func() (*github.Response, error)) error {
	attempt := 0
	operation := func() error {
		attempt++
		resp, err := fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		if wait, ok := rateLimitWait(err); ok {
			if wait > maxRateLimitWait {
				return backoff.Permanent(err)
			}
			c.logger.Warn("GitHub rate limit hit, waiting for reset", "op", op, "wait", wait.String())
			if wait > 0 {
				timer := time.NewTimer(wait)
				defer timer.Stop()
				select {
				case <-timer.C:
				case <-ctx.Done():
					return backoff.Permanent(ctx.Err())
				}
			}
			return err
		}

		if resp != nil && resp.StatusCode < http.StatusInternalServerError {
			return backoff.Permanent(err)
		}
		c.logger.Debug("GitHub request failed, retrying", "op", op, "attempt", attempt, "error", err)
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), maxRetries-1), ctx)
	return backoff.Retry(operation, b)
}

func rateLimitWait(err error) (time.Duration, bool) {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return time.Until(rateErr.Rate.Reset.Time), true
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		if d := abuseErr.GetRetryAfter(); d > 0 {
			return d, true
		}
		return time.Second, true
	}
	return 0, false
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

func upstreamError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", custom_errors.ErrUpstreamUnavailable, op, err)
}

// toInternalUser translates a github.User object to our internal model.GitHubUser.
func toInternalUser(u *github.User) *model.GitHubUser {
	return &model.GitHubUser{
		Login:       u.GetLogin(),
		Name:        u.GetName(),
		AvatarURL:   u.GetAvatarURL(),
		Location:    u.GetLocation(),
		Bio:         u.GetBio(),
		Followers:   u.GetFollowers(),
		PublicRepos: u.GetPublicRepos(),
		PublicGists: u.GetPublicGists(),
	}
}

// toInternalRepository translates a github.Repository object to our internal model.Repository.
// The language histogram is fetched separately.
func toInternalRepository(r *github.Repository) model.Repository {
	return model.Repository{
		GithubRepoID:  r.GetID(),
		OwnerUsername: r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Description:   emptyToNil(r.Description),
		Language:      emptyToNil(r.Language),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		HTMLURL:       r.GetHTMLURL(),
	}
}

// toInternalEvent keeps the type and time of an event and, for pushes, the
// number of commits pushed.
func (c *Client) toInternalEvent(e *github.Event) model.Event {
	ev := model.Event{
		Type:      e.GetType(),
		CreatedAt: e.GetCreatedAt().Time,
	}
	if ev.Type != model.PushEventType {
		return ev
	}

	payload, err := e.ParsePayload()
	if err != nil {
		c.logger.Debug("Failed to parse push event payload", "event_id", e.GetID(), "error", err)
		return ev
	}
	if push, ok := payload.(*github.PushEvent); ok {
		// size counts every commit of the push; the commits list is truncated by GitHub.
		ev.CommitCount = max(push.GetSize(), len(push.Commits))
	}
	return ev
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

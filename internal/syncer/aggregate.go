// internal/syncer/aggregate.go
package syncer

import (
	"cmp"
	"slices"
	"time"

	"dev-leaderboard/internal/model"
)

const (
	commitWindow = 7 * 24 * time.Hour
	topLanguages = 5
)

// aggregateStats derives the scored counters from the fetched upstream data.
func aggregateStats(user *model.GitHubUser, repos []model.Repository, events []model.Event, gists []model.Gist, now time.Time) model.Stats {
	stats := model.Stats{
		TotalFollowers:   user.Followers,
		PublicRepoCount:  user.PublicRepos,
		WeeklyCommits:    weeklyCommits(events, now),
		PublicGistsCount: publicGists(gists),
	}
	for _, r := range repos {
		stats.TotalStars += r.Stars
		stats.TotalForks += r.Forks
	}
	return stats
}

// weeklyCommits sums the commits of push events strictly after now minus seven days.
func weeklyCommits(events []model.Event, now time.Time) int {
	since := now.Add(-commitWindow)
	total := 0
	for _, e := range events {
		if e.Type == model.PushEventType && e.CreatedAt.After(since) {
			total += e.CommitCount
		}
	}
	return total
}

func publicGists(gists []model.Gist) int {
	n := 0
	for _, g := range gists {
		if g.Public {
			n++
		}
	}
	return n
}

// rankLanguages sums the byte histograms of all repositories and returns up
// to n languages, most bytes first, ties by name.
func rankLanguages(repos []model.Repository, n int) []string {
	totals := make(map[string]int64)
	for _, r := range repos {
		for lang, bytes := range r.Languages {
			totals[lang] += bytes
		}
	}

	langs := make([]string, 0, len(totals))
	for lang := range totals {
		langs = append(langs, lang)
	}
	slices.SortFunc(langs, func(a, b string) int {
		if c := cmp.Compare(totals[b], totals[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	if len(langs) > n {
		langs = langs[:n]
	}
	return langs
}

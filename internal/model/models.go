// internal/model/models.go
package model

import "time"

// Stats holds the aggregated counters a developer is scored on.
type Stats struct {
	TotalStars       int `json:"totalStars" bson:"totalStars"`
	TotalForks       int `json:"totalForks" bson:"totalForks"`
	TotalFollowers   int `json:"totalFollowers" bson:"totalFollowers"`
	WeeklyCommits    int `json:"weeklyCommits" bson:"weeklyCommits"`
	PublicRepoCount  int `json:"publicRepoCount" bson:"publicRepoCount"`
	PublicGistsCount int `json:"publicGistsCount" bson:"publicGistsCount"`
}

// Badge is a snapshot of an awarded achievement.
type Badge struct {
	ID          string `json:"id" bson:"id"`
	Emoji       string `json:"emoji" bson:"emoji"`
	Title       string `json:"title" bson:"title"`
	Explanation string `json:"explanation" bson:"explanation"`
}

// Organization is a GitHub organization membership.
type Organization struct {
	Login     string `json:"login" bson:"login"`
	AvatarURL string `json:"avatar_url" bson:"avatar_url"`
}

// Developer is the cached leaderboard profile of one GitHub user.
type Developer struct {
	Username      string         `json:"githubUsername" bson:"githubUsername"`
	Name          string         `json:"name" bson:"name"`
	AvatarURL     string         `json:"avatarUrl" bson:"avatarUrl"`
	Country       string         `json:"country" bson:"country"`
	Location      string         `json:"location" bson:"location"`
	Bio           string         `json:"bio" bson:"bio"`
	Score         int            `json:"xpScore" bson:"xpScore"`
	Rank          int            `json:"rank,omitempty" bson:"-"`
	Stats         Stats          `json:"stats" bson:"stats"`
	Badges        []Badge        `json:"badges" bson:"badges"`
	Languages     []string       `json:"programmingLanguages" bson:"programmingLanguages"`
	Organizations []Organization `json:"organizations" bson:"organizations"`
	LastSyncedAt  time.Time      `json:"lastSyncedAt" bson:"lastSyncedAt"`
}

// Repository is the cached metadata of one GitHub repository.
type Repository struct {
	GithubRepoID  int64            `json:"githubRepoId" bson:"githubRepoId"`
	OwnerUsername string           `json:"ownerUsername" bson:"ownerUsername"`
	Name          string           `json:"name" bson:"name"`
	FullName      string           `json:"fullName" bson:"fullName"`
	Description   *string          `json:"description" bson:"description"`
	Language      *string          `json:"language" bson:"language"`
	Languages     map[string]int64 `json:"languages" bson:"languages"`
	Stars         int              `json:"stars" bson:"stars"`
	Forks         int              `json:"forks" bson:"forks"`
	HTMLURL       string           `json:"htmlUrl" bson:"htmlUrl"`
	LastSyncedAt  time.Time        `json:"lastSyncedAt" bson:"lastSyncedAt"`
}

// ProfileRepository is the public projection of a Repository.
type ProfileRepository struct {
	Name        string  `json:"name"`
	FullName    string  `json:"fullName"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
	Stars       int     `json:"stars"`
	Forks       int     `json:"forks"`
	HTMLURL     string  `json:"htmlUrl"`
}

// Public strips sync bookkeeping and the raw language histogram.
func (r Repository) Public() ProfileRepository {
	return ProfileRepository{
		Name:        r.Name,
		FullName:    r.FullName,
		Description: r.Description,
		Language:    r.Language,
		Stars:       r.Stars,
		Forks:       r.Forks,
		HTMLURL:     r.HTMLURL,
	}
}

// Insights is the generated narrative for a developer profile.
type Insights struct {
	Strengths              string            `json:"strengths"`
	BadgeExplanations      map[string]string `json:"badgeExplanations"`
	ImprovementSuggestions string            `json:"improvementSuggestions"`
}

// Contributor is a contributor of a GitHub repository.
type Contributor struct {
	Login         string `json:"login"`
	AvatarURL     string `json:"avatar_url"`
	HTMLURL       string `json:"html_url"`
	Contributions int    `json:"contributions"`
	Type          string `json:"type"`
}

// IsBot reports whether GitHub marks the contributor as an automation account.
func (c Contributor) IsBot() bool {
	return c.Type == "Bot"
}

// SearchUser is one hit of a GitHub user search.
type SearchUser struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// SearchResult is a page of GitHub user search hits.
type SearchResult struct {
	TotalCount int          `json:"totalCount"`
	Incomplete bool         `json:"incompleteResults"`
	Users      []SearchUser `json:"users"`
}

// LeaderboardPage is one page of the score-ordered developer listing.
type LeaderboardPage struct {
	Developers  []Developer `json:"developers"`
	TotalCount  int64       `json:"totalCount"`
	CurrentPage int         `json:"currentPage"`
	PerPage     int         `json:"perPage"`
	TotalPages  int         `json:"totalPages"`
}

// ScoreSummary describes the distribution of scores across all developers.
type ScoreSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// internal/model/upstream.go
package model

import "time"

// GitHubUser is the subset of a GitHub user profile the sync needs.
type GitHubUser struct {
	Login       string
	Name        string
	AvatarURL   string
	Location    string
	Bio         string
	Followers   int
	PublicRepos int
	PublicGists int
}

// Event is a user activity event reduced to what the commit count needs.
type Event struct {
	Type        string
	CreatedAt   time.Time
	CommitCount int
}

// PushEventType is the GitHub event type that carries commits.
const PushEventType = "PushEvent"

// Gist is a user gist reduced to its visibility.
type Gist struct {
	ID     string
	Public bool
}

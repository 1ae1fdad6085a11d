// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by the store when no record matches the lookup key.
	ErrNotFound = errors.New("record not found")
	// ErrUserNotFound is returned when GitHub has no usable profile for a login.
	ErrUserNotFound = errors.New("github user not found")
	// ErrUpstreamUnavailable wraps failures talking to the GitHub API.
	ErrUpstreamUnavailable = errors.New("github api unavailable")
	// ErrPersistence wraps database write failures during a sync.
	ErrPersistence = errors.New("persistence failure")
	// ErrMalformedInsights is returned when the model reply cannot be decoded.
	ErrMalformedInsights = errors.New("malformed insights output")
	// ErrInsightsUnavailable is returned when no generative model is configured.
	ErrInsightsUnavailable = errors.New("insights generator not configured")
)

// ErrInvalidRepoFormat is returned when a repository string in the config is not in 'owner/name' format.
type ErrInvalidRepoFormat struct {
	Repo string
}

func (e *ErrInvalidRepoFormat) Error() string {
	return fmt.Sprintf("invalid repository format: %q, expected 'owner/name'", e.Repo)
}

// ErrInvalidUsername is returned when a path or flag value is not a valid GitHub login.
type ErrInvalidUsername struct {
	Username string
}

func (e *ErrInvalidUsername) Error() string {
	return fmt.Sprintf("invalid github username: %q", e.Username)
}

// SyncError records which stage of a sync failed for which user.
type SyncError struct {
	Username string
	Stage    string
	Err      error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %s: %v", e.Username, e.Stage, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

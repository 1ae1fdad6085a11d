// internal/store/store.go
package store

import (
	"context"

	"dev-leaderboard/internal/model"
)

// Store persists developer profiles and their repositories.
// Usernames are matched case-insensitively by every method.
type Store interface {
	// GetDeveloper returns custom_errors.ErrNotFound when no profile exists.
	GetDeveloper(ctx context.Context, username string) (*model.Developer, error)
	UpsertDeveloper(ctx context.Context, dev *model.Developer) error
	CountDevelopers(ctx context.Context) (int64, error)
	// ListDevelopers orders by score descending, then username ascending.
	ListDevelopers(ctx context.Context, offset, limit int) ([]model.Developer, error)
	CountDevelopersAbove(ctx context.Context, score int) (int64, error)
	ListScores(ctx context.Context) ([]int, error)

	UpsertRepository(ctx context.Context, repo *model.Repository) error
	// ListTopRepositories orders by stars descending.
	ListTopRepositories(ctx context.Context, owner string, limit int) ([]model.Repository, error)
	// PruneRepositories deletes the owner's repositories whose id is not in keep
	// and returns how many were removed.
	PruneRepositories(ctx context.Context, owner string, keep []int64) (int64, error)

	Close(ctx context.Context) error
}

// normalize gives the slices of a stored profile their empty, non-nil form.
func normalize(dev *model.Developer) {
	if dev.Badges == nil {
		dev.Badges = []model.Badge{}
	}
	if dev.Languages == nil {
		dev.Languages = []string{}
	}
	if dev.Organizations == nil {
		dev.Organizations = []model.Organization{}
	}
}

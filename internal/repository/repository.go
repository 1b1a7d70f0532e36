// Package repository defines the storage interfaces the service layer
// depends on. Implementations live in subpackages (sqlite); tests use
// in-memory fakes. Keeping the surface narrow means controllers never see
// SQL, and the backing store can be swapped without touching them.
package repository

import (
	"context"

	"github.com/sakif/goal-tracker/internal/model"
)

// UserRepository owns durable storage of accounts.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields
	// apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertByGitHubID inserts on first OAuth sign-in and refreshes the
	// profile on subsequent ones, keyed by the stable GitHub user ID.
	UpsertByGitHubID(ctx context.Context, user *model.User) error
}

// GoalRepository owns durable storage of goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	GetByID(ctx context.Context, id string) (*model.Goal, error)
	// ListByOwner returns every goal whose owner matches, oldest first.
	ListByOwner(ctx context.Context, owner string) ([]model.Goal, error)
	Update(ctx context.Context, goal *model.Goal) error
	Delete(ctx context.Context, id string) error
}

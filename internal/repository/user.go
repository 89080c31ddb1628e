package repository

import (
	"context"

	"github.com/tungkyap/storage-management/internal/model"
)

// UserRepository defines data access for authentication users.
type UserRepository interface {
	// Create inserts a new user row and returns the stored record.
	Create(ctx context.Context, user *model.User) (*model.User, error)

	// FindByEmail returns a user by email. Misses surface as sql.ErrNoRows.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

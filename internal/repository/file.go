package repository

import (
	"context"

	"github.com/tungkyap/storage-management/internal/model"
)

// FileRepository defines data access for uploaded-file metadata.
// Records are append-only; there is no update path.
type FileRepository interface {
	// Create inserts a new file metadata row and returns the stored record.
	Create(ctx context.Context, file *model.File) (*model.File, error)

	// FindByID returns a file record by its ID. Misses surface as sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.File, error)

	// FindByName returns a file record by its storage filename (public identifier).
	FindByName(ctx context.Context, filename string) (*model.File, error)

	// List returns all file records in insertion order.
	List(ctx context.Context) ([]model.File, error)
}

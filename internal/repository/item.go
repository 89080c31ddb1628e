package repository

import (
	"context"
	"time"

	"github.com/tungkyap/storage-management/internal/model"
)

// ItemRepository defines data access for inventory items using SQL queries only.
// No business logic here — strictly persistence operations.
type ItemRepository interface {
	// Create inserts a new item row and returns the stored record
	// (including DB-assigned timestamps).
	Create(ctx context.Context, item *model.Item) (*model.Item, error)

	// FindByID returns an item by its ID. Misses surface as sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.Item, error)

	// List returns all items in insertion order. No pagination.
	List(ctx context.Context) ([]model.Item, error)

	// FindByCategory returns items whose category matches exactly.
	FindByCategory(ctx context.Context, category string) ([]model.Item, error)

	// FindLowStock returns items where minimum_stock_level > 0 AND
	// quantity <= minimum_stock_level, computed live against current rows
	// rather than the persisted is_low_stock flag.
	FindLowStock(ctx context.Context) ([]model.Item, error)

	// Update replaces all mutable columns of the row and bumps updated_at.
	// Returns sql.ErrNoRows if the row vanished.
	Update(ctx context.Context, item *model.Item) (*model.Item, error)

	// Delete removes an item by ID. Returns sql.ErrNoRows if no row matched.
	Delete(ctx context.Context, id string) error

	// Stats returns aggregate counters over all items in a single query.
	Stats(ctx context.Context) (*ItemStats, error)
}

// ItemStats holds raw aggregates for the inventory summary.
// LastUpdated is nil when the table is empty.
type ItemStats struct {
	TotalItems    int
	TotalStock    int
	LowStockCount int
	LastUpdated   *time.Time
}

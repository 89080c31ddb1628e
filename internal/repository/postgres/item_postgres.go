package postgres

import (
	"context"
	"database/sql"

	"github.com/tungkyap/storage-management/internal/model"
	"github.com/tungkyap/storage-management/internal/repository"
)

const itemColumns = `id, name, description, quantity, location, category, assigned_to,
		minimum_stock_level, is_low_stock, image_url, image_public_id, created_at, updated_at`

// ItemPostgres is a PostgreSQL implementation of repository.ItemRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ItemPostgres struct {
	db *sql.DB
}

// NewItemPostgres creates a new ItemPostgres repository.
func NewItemPostgres(db *sql.DB) *ItemPostgres {
	return &ItemPostgres{db: db}
}

var _ repository.ItemRepository = (*ItemPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	var it model.Item
	var minStock sql.NullInt64
	if err := row.Scan(
		&it.ID,
		&it.Name,
		&it.Description,
		&it.Quantity,
		&it.Location,
		&it.Category,
		&it.AssignedTo,
		&minStock,
		&it.IsLowStock,
		&it.ImageURL,
		&it.ImagePublicID,
		&it.CreatedAt,
		&it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if minStock.Valid {
		v := int(minStock.Int64)
		it.MinimumStockLevel = &v
	}
	return &it, nil
}

func nullMinStock(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// Create inserts a new item row and returns the stored record.
func (r *ItemPostgres) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	const q = `
		INSERT INTO items (id, name, description, quantity, location, category, assigned_to,
			minimum_stock_level, is_low_stock, image_url, image_public_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + itemColumns
	row := r.db.QueryRowContext(ctx, q,
		item.ID,
		item.Name,
		item.Description,
		item.Quantity,
		item.Location,
		item.Category,
		item.AssignedTo,
		nullMinStock(item.MinimumStockLevel),
		item.IsLowStock,
		item.ImageURL,
		item.ImagePublicID,
	)
	return scanItem(row)
}

// FindByID fetches a single item by its ID.
func (r *ItemPostgres) FindByID(ctx context.Context, id string) (*model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return scanItem(r.db.QueryRowContext(ctx, q, id))
}

// List returns all items ordered by creation time.
func (r *ItemPostgres) List(ctx context.Context) ([]model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items ORDER BY created_at, id`
	return r.queryItems(ctx, q)
}

// FindByCategory returns items matching the category exactly.
func (r *ItemPostgres) FindByCategory(ctx context.Context, category string) ([]model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items WHERE category = $1 ORDER BY created_at, id`
	return r.queryItems(ctx, q, category)
}

// FindLowStock computes the low-stock set live from current rows.
// A zero threshold is excluded here, unlike the summary's low-stock count.
func (r *ItemPostgres) FindLowStock(ctx context.Context) ([]model.Item, error) {
	const q = `SELECT ` + itemColumns + ` FROM items
		WHERE minimum_stock_level IS NOT NULL
		  AND minimum_stock_level > 0
		  AND quantity <= minimum_stock_level
		ORDER BY created_at, id`
	return r.queryItems(ctx, q)
}

// Update replaces all mutable columns and bumps updated_at.
func (r *ItemPostgres) Update(ctx context.Context, item *model.Item) (*model.Item, error) {
	const q = `
		UPDATE items
		SET name = $2, description = $3, quantity = $4, location = $5, category = $6,
			assigned_to = $7, minimum_stock_level = $8, is_low_stock = $9,
			image_url = $10, image_public_id = $11, updated_at = now()
		WHERE id = $1
		RETURNING ` + itemColumns
	row := r.db.QueryRowContext(ctx, q,
		item.ID,
		item.Name,
		item.Description,
		item.Quantity,
		item.Location,
		item.Category,
		item.AssignedTo,
		nullMinStock(item.MinimumStockLevel),
		item.IsLowStock,
		item.ImageURL,
		item.ImagePublicID,
	)
	return scanItem(row)
}

// Delete removes an item by ID. Returns sql.ErrNoRows if no row matched.
func (r *ItemPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM items WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Stats aggregates the inventory counters in one statement.
// The low-stock count includes zero thresholds; FindLowStock does not.
func (r *ItemPostgres) Stats(ctx context.Context) (*repository.ItemStats, error) {
	const q = `
		SELECT
			COUNT(*),
			COALESCE(SUM(quantity), 0),
			COUNT(*) FILTER (WHERE minimum_stock_level IS NOT NULL AND quantity <= minimum_stock_level),
			MAX(updated_at)
		FROM items`
	var st repository.ItemStats
	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, q).Scan(
		&st.TotalItems,
		&st.TotalStock,
		&st.LowStockCount,
		&last,
	); err != nil {
		return nil, err
	}
	if last.Valid {
		st.LastUpdated = &last.Time
	}
	return &st, nil
}

func (r *ItemPostgres) queryItems(ctx context.Context, q string, args ...any) ([]model.Item, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

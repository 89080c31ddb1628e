package postgres

import (
	"context"
	"database/sql"

	"github.com/tungkyap/storage-management/internal/model"
	"github.com/tungkyap/storage-management/internal/repository"
)

const fileColumns = `id, original_name, filename, path, mime_type, size, created_at, updated_at`

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

func scanFile(row rowScanner) (*model.File, error) {
	var f model.File
	if err := row.Scan(
		&f.ID,
		&f.OriginalName,
		&f.Filename,
		&f.Path,
		&f.MimeType,
		&f.Size,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a new file metadata row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, file *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, original_name, filename, path, mime_type, size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		file.ID,
		file.OriginalName,
		file.Filename,
		file.Path,
		file.MimeType,
		file.Size,
	)
	return scanFile(row)
}

// FindByID fetches a single file record by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// FindByName fetches a single file record by its storage filename.
func (r *FilePostgres) FindByName(ctx context.Context, filename string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE filename = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, filename))
}

// List returns all file records ordered by creation time.
func (r *FilePostgres) List(ctx context.Context) ([]model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

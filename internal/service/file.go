package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/tungkyap/storage-management/internal/model"
	"github.com/tungkyap/storage-management/internal/repository"
	"github.com/tungkyap/storage-management/internal/storage"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrFilenameRequired = errors.New("filename is required")
	ErrFileNotFound     = errors.New("file not found")
	ErrReaderNil        = errors.New("reader is nil")
)

// presignExpiry bounds how long a minted download URL stays valid.
const presignExpiry = 15 * time.Minute

// UploadInput carries a single multipart upload into the service layer.
type UploadInput struct {
	Reader       io.Reader
	OriginalName string
	ContentType  string
	Size         int64
}

// SaveResult is returned for every stored upload. File is nil unless metadata
// persistence was requested.
type SaveResult struct {
	File     *model.File `json:"file"`
	ImageURL string      `json:"imageUrl"`
	PublicID string      `json:"publicId"`
}

// FileService defines the use cases for handling uploaded files.
type FileService interface {
	// SaveFile uploads the content to binary storage under the configured
	// folder and returns the stable URL plus the storage public identifier.
	// When persistMetadata is true it also writes a file record, rolling the
	// stored object back if the record write fails.
	SaveFile(ctx context.Context, up UploadInput, persistMetadata bool) (*SaveResult, error)

	// Files returns all file metadata records.
	Files(ctx context.Context) ([]model.File, error)

	// FileByID returns a single file record by its ID.
	FileByID(ctx context.Context, id string) (*model.File, error)

	// FileByName returns a single file record by its storage filename.
	FileByName(ctx context.Context, filename string) (*model.File, error)

	// PresignURL mints a time-limited download URL for a stored file, or
	// storage.ErrPresignNotSupported on backends without that capability.
	PresignURL(ctx context.Context, filename string) (string, error)

	// Open streams a stored file's bytes from the active backend.
	Open(ctx context.Context, filename string) (io.ReadCloser, storage.ObjectInfo, error)

	// DeleteObject removes a stored binary by its public identifier. Metadata
	// records are never cascaded.
	DeleteObject(ctx context.Context, publicID string) error
}

// fileService is a concrete implementation of FileService.
type fileService struct {
	store  storage.Storage
	repo   repository.FileRepository
	folder string
}

// NewFileService constructs a new FileService. folder is the logical object
// key prefix uploads are stored under.
func NewFileService(store storage.Storage, repo repository.FileRepository, folder string) FileService {
	return &fileService{store: store, repo: repo, folder: folder}
}

func (s *fileService) key(filename string) string {
	return filepath.ToSlash(filepath.Join(s.folder, filename))
}

func (s *fileService) SaveFile(ctx context.Context, up UploadInput, persistMetadata bool) (*SaveResult, error) {
	if up.Reader == nil {
		return nil, ErrReaderNil
	}
	// Generate filename using UUID + original extension
	ext := filepath.Ext(up.OriginalName)
	genName := uuid.New().String() + ext
	key := s.key(genName)

	objInfo, err := s.store.Put(ctx, key, up.Reader, storage.PutObjectOptions{
		Size:        up.Size,
		ContentType: up.ContentType,
		Metadata: map[string]string{
			"original-filename": up.OriginalName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	res := &SaveResult{
		ImageURL: s.store.URL(key),
		PublicID: key,
	}
	if !persistMetadata {
		return res, nil
	}

	file := &model.File{
		ID:           uuid.New().String(),
		OriginalName: up.OriginalName,
		Filename:     genName,
		Path:         res.ImageURL,
		MimeType:     up.ContentType,
		Size:         objInfo.Size,
	}
	stored, err := s.repo.Create(ctx, file)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("metadata save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("metadata save failed: %w", err)
	}
	res.File = stored
	return res, nil
}

func (s *fileService) Files(ctx context.Context) ([]model.File, error) {
	return s.repo.List(ctx)
}

func (s *fileService) FileByID(ctx context.Context, id string) (*model.File, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	file, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return file, nil
}

func (s *fileService) FileByName(ctx context.Context, filename string) (*model.File, error) {
	if filename == "" {
		return nil, ErrFilenameRequired
	}
	file, err := s.repo.FindByName(ctx, filename)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return file, nil
}

func (s *fileService) PresignURL(ctx context.Context, filename string) (string, error) {
	if filename == "" {
		return "", ErrFilenameRequired
	}
	return s.store.PresignGet(ctx, s.key(filename), presignExpiry)
}

func (s *fileService) Open(ctx context.Context, filename string) (io.ReadCloser, storage.ObjectInfo, error) {
	if filename == "" {
		return nil, storage.ObjectInfo{}, ErrFilenameRequired
	}
	return s.store.Get(ctx, s.key(filename))
}

func (s *fileService) DeleteObject(ctx context.Context, publicID string) error {
	return s.store.Delete(ctx, publicID)
}

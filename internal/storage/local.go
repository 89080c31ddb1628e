package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// localStorage implements the Storage interface on top of a directory tree.
// Keys map directly to file paths under the base directory; retrieval serves
// bytes from disk instead of redirecting to a remote URL.
type localStorage struct {
	baseDir string
}

// NewLocal creates a local-disk storage backend rooted at baseDir.
// The directory is created if missing.
func NewLocal(baseDir string) (Storage, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local storage directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &localStorage{baseDir: baseDir}, nil
}

func (l *localStorage) path(key string) string {
	return filepath.Join(l.baseDir, filepath.FromSlash(key))
}

// Put writes an object to disk under the given key, creating intermediate
// directories as needed.
func (l *localStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	dst := l.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ObjectInfo{}, fmt.Errorf("create object directory: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("create object file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return ObjectInfo{}, fmt.Errorf("write object file: %w", err)
	}

	return ObjectInfo{
		Key:          key,
		Size:         n,
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

// Get opens an object from disk.
func (l *localStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	f, err := os.Open(l.path(key))
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	info := ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		LastModified: st.ModTime(),
	}
	return f, info, nil
}

// Delete removes an object file by key.
func (l *localStorage) Delete(ctx context.Context, key string) error {
	return os.Remove(l.path(key))
}

// PresignGet is not supported for local disk; callers stream through Get instead.
func (l *localStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "", ErrPresignNotSupported
}

// URL returns the on-disk path recorded for the object.
func (l *localStorage) URL(key string) string {
	return l.path(key)
}

package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage contains binary storage abstractions with two interchangeable
// backends: an S3-compatible object store and a local-disk directory. A
// deployment selects exactly one backend via configuration.

// ErrPresignNotSupported is returned by backends that cannot mint
// time-limited download URLs (the local-disk backend). Callers fall back to
// streaming the object through Get.
var ErrPresignNotSupported = errors.New("presigned URLs not supported by this storage backend")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable binary storage client interface.
// Methods use context and streaming readers/writers.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object
	// without credentials, or ErrPresignNotSupported.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// URL returns the stable reference recorded for an uploaded object: the
	// public object URL for remote backends, the on-disk path for local ones.
	URL(key string) string
}

package handler

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/tungkyap/storage-management/internal/config"
	"github.com/tungkyap/storage-management/internal/service"
)

// checkUploadPolicy rejects uploads with a disallowed declared MIME type or a
// size over the configured ceiling, before any storage or DB work happens.
// It returns a non-nil response error when the upload is rejected.
func checkUploadPolicy(c *fiber.Ctx, fh *multipart.FileHeader, policy config.UploadPolicy, allowed []string) error {
	ct := fh.Header.Get(fiber.HeaderContentType)
	ok := false
	for _, t := range allowed {
		if ct == t {
			ok = true
			break
		}
	}
	if !ok {
		return writeError(c, fiber.StatusBadRequest, "FILE_TYPE_NOT_ALLOWED", "file type not allowed")
	}
	if policy.MaxSizeBytes > 0 && fh.Size > policy.MaxSizeBytes {
		return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", "file exceeds maximum allowed size")
	}
	return nil
}

// openUpload converts a multipart file header into a service.UploadInput.
// The returned file must be closed by the caller.
func openUpload(fh *multipart.FileHeader) (*service.UploadInput, multipart.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}

	ct := fh.Header.Get(fiber.HeaderContentType)
	if ct == "" {
		ct = "application/octet-stream"
	}

	return &service.UploadInput{
		Reader:       f,
		OriginalName: fh.Filename,
		ContentType:  ct,
		Size:         fh.Size,
	}, f, nil
}

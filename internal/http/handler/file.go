package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tungkyap/storage-management/internal/config"
	"github.com/tungkyap/storage-management/internal/service"
	"github.com/tungkyap/storage-management/internal/storage"
)

// maxFilesPerRequest caps POST /file/uploads batch size.
const maxFilesPerRequest = 10

// UploadFile handles POST /file/upload (multipart: `file`).
func UploadFile(svc service.FileService, policy config.UploadPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if rejected := checkUploadPolicy(c, fh, policy, policy.AllowedFileTypes); rejected != nil {
			return rejected
		}

		up, f, err := openUpload(fh)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		res, err := svc.SaveFile(c.UserContext(), *up, true)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// UploadFiles handles POST /file/uploads (multipart: up to 10 `files`).
func UploadFiles(svc service.FileService, policy config.UploadPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form-data required")
		}
		headers := form.File["files"]
		if len(headers) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "no files uploaded")
		}
		if len(headers) > maxFilesPerRequest {
			return writeError(c, fiber.StatusBadRequest, "TOO_MANY_FILES", "too many files in one request")
		}

		results := make([]*service.SaveResult, 0, len(headers))
		for _, fh := range headers {
			if rejected := checkUploadPolicy(c, fh, policy, policy.AllowedFileTypes); rejected != nil {
				return rejected
			}
			up, f, err := openUpload(fh)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			res, err := svc.SaveFile(c.UserContext(), *up, true)
			f.Close()
			if err != nil {
				return serviceError(c, err)
			}
			results = append(results, res)
		}
		return c.Status(fiber.StatusCreated).JSON(results)
	}
}

// ServeFile handles GET /file/:filename. Cloud deployments redirect to a
// time-limited URL; the local-disk backend streams bytes directly.
func ServeFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filename := c.Params("filename")

		record, err := svc.FileByName(c.UserContext(), filename)
		if err != nil {
			return serviceError(c, err)
		}

		url, err := svc.PresignURL(c.UserContext(), record.Filename)
		if err == nil {
			return c.Redirect(url, fiber.StatusFound)
		}
		if !errors.Is(err, storage.ErrPresignNotSupported) {
			return serviceError(c, err)
		}

		rc, info, err := svc.Open(c.UserContext(), record.Filename)
		if err != nil {
			return serviceError(c, err)
		}
		if record.MimeType != "" {
			c.Set(fiber.HeaderContentType, record.MimeType)
		}
		return c.SendStream(rc, int(info.Size))
	}
}

// ListFiles handles GET /file.
func ListFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		files, err := svc.Files(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(files)
	}
}

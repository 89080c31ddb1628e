package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/tungkyap/storage-management/internal/auth"
	"github.com/tungkyap/storage-management/internal/config"
	"github.com/tungkyap/storage-management/internal/model"
	"github.com/tungkyap/storage-management/internal/service"
	serviceMocks "github.com/tungkyap/storage-management/internal/service/mocks"
	"github.com/tungkyap/storage-management/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testPolicy() config.UploadPolicy {
	return config.UploadPolicy{
		MaxSizeBytes:      1024 * 1024,
		AllowedImageTypes: []string{"image/jpeg", "image/png"},
		AllowedFileTypes:  []string{"image/jpeg", "application/pdf", "text/plain"},
	}
}

// multipartBody builds a multipart body with form fields and optional files.
func multipartBody(t *testing.T, fields map[string]string, files map[string]struct {
	field, name, contentType string
	content                  []byte
}) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		part.Write(f.content)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateItem(t *testing.T) {
	mockSvc := new(serviceMocks.MockItemService)
	app := fiber.New()
	app.Post("/items", CreateItem(mockSvc, testPolicy()))

	t.Run("success without image", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{
			"name":     "Drill",
			"quantity": "5",
			"category": "tools",
		}, nil)

		expected := &model.Item{ID: uuid.New().String(), Name: "Drill", Quantity: 5, Category: "tools"}
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateItemInput) bool {
			return in.Name == "Drill" && in.Quantity == 5 && in.MinimumStockLevel == nil
		}), (*service.UploadInput)(nil)).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/items", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Item
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("success with image", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{
			"name":              "Helmet",
			"quantity":          "3",
			"minimumStockLevel": "5",
		}, map[string]struct {
			field, name, contentType string
			content                  []byte
		}{
			"image": {field: "image", name: "helmet.png", contentType: "image/png", content: []byte("png-bytes")},
		})

		expected := &model.Item{ID: uuid.New().String(), Name: "Helmet", Quantity: 3, IsLowStock: true}
		mockSvc.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(up *service.UploadInput) bool {
			return up != nil && up.OriginalName == "helmet.png" && up.ContentType == "image/png"
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/items", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing name", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"quantity": "1"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/items", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "VALIDATION_ERROR", res.Error.Code)
		mockSvc.AssertNotCalled(t, "Create")
	})

	t.Run("missing quantity", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"name": "Drill"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/items", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "VALIDATION_ERROR", res.Error.Code)
		mockSvc.AssertNotCalled(t, "Create")
	})

	t.Run("invalid quantity", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"name": "x", "quantity": "abc"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/items", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_QUANTITY", res.Error.Code)
	})

	t.Run("disallowed image type", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"name": "x", "quantity": "1"}, map[string]struct {
			field, name, contentType string
			content                  []byte
		}{
			"image": {field: "image", name: "evil.exe", contentType: "application/octet-stream", content: []byte("mz")},
		})

		req := httptest.NewRequest(http.MethodPost, "/items", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_TYPE_NOT_ALLOWED", res.Error.Code)
		mockSvc.AssertNotCalled(t, "Create")
	})

	t.Run("oversized image", func(t *testing.T) {
		policy := testPolicy()
		policy.MaxSizeBytes = 4
		smallApp := fiber.New()
		smallApp.Post("/items", CreateItem(mockSvc, policy))

		body, ct := multipartBody(t, map[string]string{"name": "x", "quantity": "1"}, map[string]struct {
			field, name, contentType string
			content                  []byte
		}{
			"image": {field: "image", name: "big.png", contentType: "image/png", content: []byte("larger than four bytes")},
		})

		req := httptest.NewRequest(http.MethodPost, "/items", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := smallApp.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_TOO_LARGE", res.Error.Code)
	})
}

func TestGetItem(t *testing.T) {
	mockSvc := new(serviceMocks.MockItemService)
	app := fiber.New()
	app.Get("/items/:id", GetItem(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		expected := &model.Item{ID: id, Name: "Drill"}
		mockSvc.On("Get", mock.Anything, id).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/items/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Item
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrItemNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/items/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/items/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdateItem(t *testing.T) {
	mockSvc := new(serviceMocks.MockItemService)
	app := fiber.New()
	app.Patch("/items/:id", UpdateItem(mockSvc, testPolicy()))

	t.Run("partial update only touches supplied fields", func(t *testing.T) {
		id := uuid.New().String()
		body, ct := multipartBody(t, map[string]string{"quantity": "7"}, nil)

		expected := &model.Item{ID: id, Name: "Drill", Quantity: 7}
		mockSvc.On("Update", mock.Anything, id, mock.MatchedBy(func(in service.UpdateItemInput) bool {
			return in.Quantity != nil && *in.Quantity == 7 && in.Name == nil && in.Category == nil
		}), (*service.UploadInput)(nil)).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPatch, "/items/"+id, body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		body, ct := multipartBody(t, map[string]string{"name": "New"}, nil)

		mockSvc.On("Update", mock.Anything, id, mock.Anything, (*service.UploadInput)(nil)).
			Return(nil, service.ErrItemNotFound).Once()

		req := httptest.NewRequest(http.MethodPatch, "/items/"+id, body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("non-multipart body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/items/"+uuid.New().String(), bytes.NewBufferString(`{"name":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_FORM", res.Error.Code)
	})
}

func TestDeleteItem(t *testing.T) {
	mockSvc := new(serviceMocks.MockItemService)
	app := fiber.New()
	app.Delete("/items/:id", DeleteItem(mockSvc))

	t.Run("returns deleted record", func(t *testing.T) {
		id := uuid.New().String()
		expected := &model.Item{ID: id, Name: "Drill"}
		mockSvc.On("Delete", mock.Anything, id).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/items/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Item
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil, service.ErrItemNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/items/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestItemCollections(t *testing.T) {
	mockSvc := new(serviceMocks.MockItemService)
	app := fiber.New()
	app.Get("/items", ListItems(mockSvc))
	app.Get("/items/low-stock", ListLowStockItems(mockSvc))
	app.Get("/items/summary", GetInventorySummary(mockSvc))
	app.Get("/items/category/:category", ListItemsByCategory(mockSvc))

	t.Run("list", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).
			Return([]model.Item{{ID: uuid.New().String(), Name: "Drill"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var items []model.Item
		json.NewDecoder(resp.Body).Decode(&items)
		assert.Len(t, items, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("low stock", func(t *testing.T) {
		min := 10
		mockSvc.On("FindLowStock", mock.Anything).
			Return([]model.Item{{ID: uuid.New().String(), Quantity: 2, MinimumStockLevel: &min, IsLowStock: true}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/items/low-stock", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var items []model.Item
		json.NewDecoder(resp.Body).Decode(&items)
		require.Len(t, items, 1)
		assert.True(t, items[0].IsLowStock)
		mockSvc.AssertExpectations(t)
	})

	t.Run("summary", func(t *testing.T) {
		now := time.Now().UTC()
		mockSvc.On("Summary", mock.Anything).
			Return(&model.InventorySummary{TotalItems: 3, TotalStock: 42, LowStockCount: 1, LastUpdated: now}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/items/summary", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var summary model.InventorySummary
		json.NewDecoder(resp.Body).Decode(&summary)
		assert.Equal(t, 3, summary.TotalItems)
		assert.Equal(t, 42, summary.TotalStock)
		assert.Equal(t, 1, summary.LowStockCount)
		mockSvc.AssertExpectations(t)
	})

	t.Run("by category", func(t *testing.T) {
		mockSvc.On("FindByCategory", mock.Anything, "tools").
			Return([]model.Item{{ID: uuid.New().String(), Category: "tools"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/items/category/tools", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Post("/file/upload", UploadFile(mockSvc, testPolicy()))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody(t, nil, map[string]struct {
			field, name, contentType string
			content                  []byte
		}{
			"file": {field: "file", name: "manual.pdf", contentType: "application/pdf", content: []byte("%PDF-")},
		})

		expected := &service.SaveResult{
			File:     &model.File{ID: uuid.New().String(), OriginalName: "manual.pdf"},
			ImageURL: "https://store.example/bucket/inventory_images/abc.pdf",
			PublicID: "inventory_images/abc.pdf",
		}
		mockSvc.On("SaveFile", mock.Anything, mock.MatchedBy(func(up service.UploadInput) bool {
			return up.OriginalName == "manual.pdf" && up.ContentType == "application/pdf"
		}), true).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/file/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result service.SaveResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.PublicID, result.PublicID)
		require.NotNil(t, result.File)
		assert.Equal(t, "manual.pdf", result.File.OriginalName)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/file/upload", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("disallowed type", func(t *testing.T) {
		body, ct := multipartBody(t, nil, map[string]struct {
			field, name, contentType string
			content                  []byte
		}{
			"file": {field: "file", name: "script.sh", contentType: "application/x-sh", content: []byte("#!/bin/sh")},
		})

		req := httptest.NewRequest(http.MethodPost, "/file/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_TYPE_NOT_ALLOWED", res.Error.Code)
		mockSvc.AssertNotCalled(t, "SaveFile")
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := multipartBody(t, nil, map[string]struct {
			field, name, contentType string
			content                  []byte
		}{
			"file": {field: "file", name: "note.txt", contentType: "text/plain", content: []byte("hello")},
		})

		mockSvc.On("SaveFile", mock.Anything, mock.Anything, true).
			Return(nil, errors.New("storage down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/file/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadFiles(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Post("/file/uploads", UploadFiles(mockSvc, testPolicy()))

	t.Run("batch success", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		for _, name := range []string{"a.txt", "b.txt"} {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
			h.Set("Content-Type", "text/plain")
			part, err := writer.CreatePart(h)
			require.NoError(t, err)
			part.Write([]byte("content"))
		}
		require.NoError(t, writer.Close())

		mockSvc.On("SaveFile", mock.Anything, mock.Anything, true).
			Return(&service.SaveResult{PublicID: "inventory_images/x.txt"}, nil).Twice()

		req := httptest.NewRequest(http.MethodPost, "/file/uploads", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var results []service.SaveResult
		json.NewDecoder(resp.Body).Decode(&results)
		assert.Len(t, results, 2)
		mockSvc.AssertExpectations(t)
	})

	t.Run("too many files", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		for i := 0; i < maxFilesPerRequest+1; i++ {
			h := make(textproto.MIMEHeader)
			h.Set("Content-Disposition", `form-data; name="files"; filename="f.txt"`)
			h.Set("Content-Type", "text/plain")
			part, err := writer.CreatePart(h)
			require.NoError(t, err)
			part.Write([]byte("x"))
		}
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/file/uploads", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "TOO_MANY_FILES", res.Error.Code)
	})

	t.Run("no files", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"unrelated": "field"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/file/uploads", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})
}

func TestServeFile(t *testing.T) {
	t.Run("redirects to presigned url", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockFileService)
		app := fiber.New()
		app.Get("/file/:filename", ServeFile(mockSvc))

		record := &model.File{ID: uuid.New().String(), Filename: "abc.png", MimeType: "image/png"}
		mockSvc.On("FileByName", mock.Anything, "abc.png").Return(record, nil).Once()
		mockSvc.On("PresignURL", mock.Anything, "abc.png").
			Return("https://store.example/bucket/inventory_images/abc.png?sig=x", nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/file/abc.png", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Location"), "abc.png")
		mockSvc.AssertExpectations(t)
	})

	t.Run("streams when presigning unsupported", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockFileService)
		app := fiber.New()
		app.Get("/file/:filename", ServeFile(mockSvc))

		record := &model.File{ID: uuid.New().String(), Filename: "abc.txt", MimeType: "text/plain"}
		content := []byte("file body")
		mockSvc.On("FileByName", mock.Anything, "abc.txt").Return(record, nil).Once()
		mockSvc.On("PresignURL", mock.Anything, "abc.txt").
			Return("", storage.ErrPresignNotSupported).Once()
		mockSvc.On("Open", mock.Anything, "abc.txt").
			Return(io.NopCloser(bytes.NewReader(content)), storage.ObjectInfo{Size: int64(len(content))}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/file/abc.txt", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, content, body)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown filename", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockFileService)
		app := fiber.New()
		app.Get("/file/:filename", ServeFile(mockSvc))

		mockSvc.On("FileByName", mock.Anything, "missing.png").
			Return(nil, service.ErrFileNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/file/missing.png", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestAuthHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/auth/register", Register(mockSvc))
	app.Post("/auth/login", Login(mockSvc))

	t.Run("register", func(t *testing.T) {
		user := &model.User{ID: uuid.New().String(), Email: "ops@example.com", Role: model.DefaultRole}
		mockSvc.On("Register", mock.Anything, "ops@example.com", "s3cret").Return(user, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/register",
			bytes.NewBufferString(`{"email":"ops@example.com","password":"s3cret"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.User
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "ops@example.com", result.Email)
		mockSvc.AssertExpectations(t)
	})

	t.Run("register email taken", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, "dup@example.com", "pw").
			Return(nil, service.ErrEmailTaken).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/register",
			bytes.NewBufferString(`{"email":"dup@example.com","password":"pw"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "EMAIL_TAKEN", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("login", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "ops@example.com", "s3cret").
			Return("signed-token", nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			bytes.NewBufferString(`{"email":"ops@example.com","password":"s3cret"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result loginResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "signed-token", result.Token)
		mockSvc.AssertExpectations(t)
	})

	t.Run("login invalid credentials", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "ops@example.com", "wrong").
			Return("", service.ErrInvalidCredentials).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			bytes.NewBufferString(`{"email":"ops@example.com","password":"wrong"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_CREDENTIALS", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString("not-json"))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRouting(t *testing.T) {
	const secret = "test-secret"

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	itemSvc := new(serviceMocks.MockItemService)
	fileSvc := new(serviceMocks.MockFileService)
	authSvc := new(serviceMocks.MockAuthService)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, db, Deps{
		Items:     itemSvc,
		Files:     fileSvc,
		Auth:      authSvc,
		Upload:    testPolicy(),
		JWTSecret: secret,
	})

	t.Run("items require a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNAUTHORIZED", res.Error.Code)
		itemSvc.AssertNotCalled(t, "List")
	})

	t.Run("files require a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/file", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		fileSvc.AssertNotCalled(t, "Files")
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		itemSvc.AssertNotCalled(t, "List")
	})

	t.Run("valid token reaches the handler", func(t *testing.T) {
		token, err := auth.GenerateToken(secret, time.Hour, uuid.New().String(), "ops@example.com", model.DefaultRole)
		require.NoError(t, err)

		itemSvc.On("List", mock.Anything).Return([]model.Item{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/items", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		itemSvc.AssertExpectations(t)
	})

	t.Run("fixed item paths are not captured as ids", func(t *testing.T) {
		token, err := auth.GenerateToken(secret, time.Hour, uuid.New().String(), "ops@example.com", model.DefaultRole)
		require.NoError(t, err)

		itemSvc.On("FindLowStock", mock.Anything).Return([]model.Item{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/items/low-stock", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		itemSvc.AssertNotCalled(t, "Get")
		itemSvc.AssertExpectations(t)
	})

	t.Run("auth endpoints are public", func(t *testing.T) {
		authSvc.On("Login", mock.Anything, "a@b.c", "pw").Return("tok", nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			bytes.NewBufferString(`{"email":"a@b.c","password":"pw"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		authSvc.AssertExpectations(t)
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}

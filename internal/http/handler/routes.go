package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"github.com/tungkyap/storage-management/internal/config"
	"github.com/tungkyap/storage-management/internal/http/middleware"
	"github.com/tungkyap/storage-management/internal/service"
)

// Deps bundles everything the HTTP routes need.
type Deps struct {
	Items     service.ItemService
	Files     service.FileService
	Auth      service.AuthService
	Upload    config.UploadPolicy
	JWTSecret string
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, deps Deps) {
	// Health endpoints
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Authentication (public)
	app.Post("/auth/register", Register(deps.Auth))
	app.Post("/auth/login", Login(deps.Auth))

	guard := middleware.Auth(deps.JWTSecret)

	// Item lifecycle. Fixed paths are registered before /:id so that
	// low-stock, summary and category routes are not captured as IDs.
	items := app.Group("/items", guard)
	items.Post("/", CreateItem(deps.Items, deps.Upload))
	items.Get("/", ListItems(deps.Items))
	items.Get("/low-stock", ListLowStockItems(deps.Items))
	items.Get("/summary", GetInventorySummary(deps.Items))
	items.Get("/category/:category", ListItemsByCategory(deps.Items))
	items.Get("/:id", GetItem(deps.Items))
	items.Patch("/:id", UpdateItem(deps.Items, deps.Upload))
	items.Delete("/:id", DeleteItem(deps.Items))

	// File uploads and serving
	file := app.Group("/file", guard)
	file.Post("/upload", UploadFile(deps.Files, deps.Upload))
	file.Post("/uploads", UploadFiles(deps.Files, deps.Upload))
	file.Get("/", ListFiles(deps.Files))
	file.Get("/:filename", ServeFile(deps.Files))
}

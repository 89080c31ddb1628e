package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tungkyap/storage-management/docs"
	"github.com/tungkyap/storage-management/internal/config"
	"github.com/tungkyap/storage-management/internal/database"
	"github.com/tungkyap/storage-management/internal/database/migration"
	handlers "github.com/tungkyap/storage-management/internal/http/handler"
	"github.com/tungkyap/storage-management/internal/http/middleware"
	itnotel "github.com/tungkyap/storage-management/internal/otel"
	"github.com/tungkyap/storage-management/internal/repository/postgres"
	"github.com/tungkyap/storage-management/internal/service"
	"github.com/tungkyap/storage-management/internal/storage"
)

// @title Inventory API
// @version 1.0
// @BasePath /
func main() {
	ctx := context.Background()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	// Initialize OpenTelemetry tracing (no-op when disabled via env)
	shutdownTracing, err := itnotel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Select the binary storage backend: S3-compatible object store or local disk
	var store storage.Storage
	switch cfg.Storage.Backend {
	case config.StorageBackendLocal:
		store, err = storage.NewLocal(cfg.Storage.LocalDir)
	default:
		store, err = storage.NewMinIO(cfg.MinIO)
	}
	if err != nil {
		log.Fatalf("failed to initialize storage backend %q: %v", cfg.Storage.Backend, err)
	}

	// Initialize repositories and services
	fileSvc := service.NewFileService(store, postgres.NewFilePostgres(db), cfg.Storage.Folder)
	itemSvc := service.NewItemService(postgres.NewItemPostgres(db), fileSvc)
	authSvc := service.NewAuthService(postgres.NewUserPostgres(db), cfg.JWT.Secret,
		time.Duration(cfg.JWT.ExpiresInHour)*time.Hour)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Upload.MaxSizeBytes) + 1024*1024, // multipart overhead headroom
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(cors.New())
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, handlers.Deps{
		Items:     itemSvc,
		Files:     fileSvc,
		Auth:      authSvc,
		Upload:    cfg.Upload,
		JWTSecret: cfg.JWT.Secret,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

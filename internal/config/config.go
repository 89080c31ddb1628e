package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for the S3-compatible media host.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret        string
	ExpiresInHour int
}

// Storage backend selection.
const (
	StorageBackendMinIO = "minio"
	StorageBackendLocal = "local"
)

// StorageConfig selects and configures the binary storage backend.
// Exactly one backend is active per deployment.
type StorageConfig struct {
	Backend  string // "minio" or "local"
	LocalDir string // base directory for the local backend
	Folder   string // logical folder (object key prefix) for uploaded images
}

// UploadPolicy restricts what multipart uploads are accepted at the boundary.
type UploadPolicy struct {
	MaxSizeBytes      int64
	AllowedImageTypes []string // item image uploads
	AllowedFileTypes  []string // generic file uploads
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Upload   UploadPolicy
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", ""),
			ExpiresInHour: getEnvInt("JWT_EXPIRES_IN_HOURS", 24),
		},
		Storage: StorageConfig{
			Backend:  getEnv("STORAGE_BACKEND", StorageBackendMinIO),
			LocalDir: getEnv("UPLOAD_DIR", "./uploads"),
			Folder:   getEnv("UPLOAD_FOLDER", "inventory_images"),
		},
		Upload: UploadPolicy{
			MaxSizeBytes:      int64(getEnvInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
			AllowedImageTypes: getEnvList("UPLOAD_ALLOWED_IMAGE_TYPES", []string{"image/jpeg", "image/png", "image/gif"}),
			AllowedFileTypes:  getEnvList("UPLOAD_ALLOWED_FILE_TYPES", []string{"image/jpeg", "image/png", "application/pdf", "text/plain"}),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

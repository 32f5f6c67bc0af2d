// Package config loads the service's environment-variable configuration
// into a typed Config, grouped by concern.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Blob          BlobConfig
	Job           JobConfig
	Image         ImageConfig
	Attach        AttachConfig
	HTTP          HTTPConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env  string
	Name string
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// BlobConfig holds blob-store settings.
type BlobConfig struct {
	// Backend selects the storage.Storage implementation backing the
	// blob namespace: "local" (default), "s3", "gcs", or "azure".
	Backend string
	// Root is the filesystem directory that roots the blob namespace
	// when Backend is "local".
	Root string

	S3Bucket          string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Endpoint        string
	S3ForcePathStyle  bool

	GCSBucket          string
	GCSProjectID       string
	GCSCredentialsFile string

	AzureAccountName string
	AzureAccountKey  string
	AzureContainer   string
}

// JobConfig holds background processing-job settings.
type JobConfig struct {
	Tries     int
	TimeoutS  int
	Workers   int
}

// Variant describes one derived image size.
type Variant struct {
	Tag         string
	LongestSide int
}

// ImageConfig holds image variant pipeline settings.
type ImageConfig struct {
	Variants    []Variant
	JPEGQuality int
}

// AttachConfig holds attachment resolver settings.
type AttachConfig struct {
	ReadyWaitS int
}

// HTTPConfig holds HTTP surface settings.
type HTTPConfig struct {
	Addr   string
	APIKey string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// ObservabilityConfig holds tracing/metrics settings.
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	EnableTracing  bool
	EnableMetrics  bool
}

// defaultVariants mirrors the variant table: 256, 512, 1024 plus the
// implicit original handled outside the configurable list.
func defaultVariants() []Variant {
	return []Variant{
		{Tag: "256", LongestSide: 256},
		{Tag: "512", LongestSide: 512},
		{Tag: "1024", LongestSide: 1024},
	}
}

// Load loads configuration from environment variables, optionally reading
// a .env file first when APP_ENV is not "production".
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("warning: .env file not found, using environment variables")
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:  getEnv("APP_ENV", "development"),
			Name: getEnv("APP_NAME", "imgingest"),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_DSN", "host=localhost port=5432 user=postgres password=postgres dbname=imgingest sslmode=disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Blob: BlobConfig{
			Backend: getEnv("BLOB_BACKEND", "local"),
			Root:    getEnv("BLOB_ROOT", "./data/blobs"),

			S3Bucket:          getEnv("BLOB_S3_BUCKET", ""),
			S3Region:          getEnv("BLOB_S3_REGION", ""),
			S3AccessKeyID:     getEnv("BLOB_S3_ACCESS_KEY_ID", ""),
			S3SecretAccessKey: getEnv("BLOB_S3_SECRET_ACCESS_KEY", ""),
			S3Endpoint:        getEnv("BLOB_S3_ENDPOINT", ""),
			S3ForcePathStyle:  getEnvAsBool("BLOB_S3_FORCE_PATH_STYLE", false),

			GCSBucket:          getEnv("BLOB_GCS_BUCKET", ""),
			GCSProjectID:       getEnv("BLOB_GCS_PROJECT_ID", ""),
			GCSCredentialsFile: getEnv("BLOB_GCS_CREDENTIALS_FILE", ""),

			AzureAccountName: getEnv("BLOB_AZURE_ACCOUNT_NAME", ""),
			AzureAccountKey:  getEnv("BLOB_AZURE_ACCOUNT_KEY", ""),
			AzureContainer:   getEnv("BLOB_AZURE_CONTAINER", ""),
		},
		Job: JobConfig{
			Tries:    getEnvAsInt("JOB_TRIES", 3),
			TimeoutS: getEnvAsInt("JOB_TIMEOUT_S", 300),
			Workers:  getEnvAsInt("JOB_WORKERS", 4),
		},
		Image: ImageConfig{
			Variants:    defaultVariants(),
			JPEGQuality: getEnvAsInt("IMAGE_JPEG_QUALITY", 90),
		},
		Attach: AttachConfig{
			ReadyWaitS: getEnvAsInt("ATTACH_READY_WAIT_S", 30),
		},
		HTTP: HTTPConfig{
			Addr:   getEnv("HTTP_ADDR", ":8080"),
			APIKey: getEnv("HTTP_API_KEY", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Observability: ObservabilityConfig{
			ServiceName:    getEnv("OBSERVABILITY_SERVICE_NAME", "imgingest"),
			ServiceVersion: getEnv("OBSERVABILITY_SERVICE_VERSION", "dev"),
			EnableTracing:  getEnvAsBool("OBSERVABILITY_ENABLE_TRACING", true),
			EnableMetrics:  getEnvAsBool("OBSERVABILITY_ENABLE_METRICS", true),
		},
	}

	if cfg.App.Env == "production" && cfg.HTTP.APIKey == "" {
		return nil, fmt.Errorf("HTTP_API_KEY must be set in production")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

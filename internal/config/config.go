package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	TablePrefix string
	CORSOrigins string
	// Blob storage
	BlobStorageHost      string // public host documents are served from
	BlobStorageContainer string
	S3Region             string
	S3AccessKey          string
	S3SecretKey          string
	S3Endpoint           string // MinIO / Azurite-style custom endpoint, empty for AWS
	// Upload fan-out
	UploadConcurrency int
	// Reference-data caching
	RedactionCacheTTL time.Duration
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		TablePrefix: getTablePrefix(env),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		BlobStorageHost:      getEnv("BLOB_STORAGE_HOST", "http://localhost:10000"),
		BlobStorageContainer: getEnv("BLOB_STORAGE_CONTAINER", "document-service-uploads"),
		S3Region:             getEnv("S3_REGION", "eu-west-2"),
		S3AccessKey:          getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:          getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:           getEnv("S3_ENDPOINT", ""),

		UploadConcurrency: getEnvInt("UPLOAD_CONCURRENCY", DefaultUploadConcurrency),
		RedactionCacheTTL: getEnvDuration("REDACTION_CACHE_TTL", DefaultRedactionCacheTTL),

		// Debug defaults to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	HTTPListenAddr string
	LogLevel       string

	// Record store.
	DatabaseURL string

	// Live log fan-out transport. An empty RedisAddr selects the in-process
	// stream, for single-node deployments without Redis.
	RedisAddr     string
	RedisPassword string

	// Remote object store (S3-compatible).
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string

	// Root folder id under which dated backup folders are created.
	DriveRootFolderID string

	// Source databases, one per environment.
	MongoURIProduction  string
	MongoURIDevelopment string
	ProductionDBName    string
	DevelopmentDBName   string

	// Local working directory for dumps and archives.
	BackupDir string

	// Cron spec for the daily run (robfig/cron format, with seconds).
	BackupSchedule string

	// SaveToRemote uploads archives to the remote store; otherwise backups
	// stay on local disk.
	SaveToRemote bool
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPListenAddr:      getEnv("HTTP_LISTEN_ADDR", ":8090"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3Region:            getEnv("S3_REGION", "us-east-1"),
		S3AccessKey:         getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:         getEnv("S3_SECRET_KEY", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		DriveRootFolderID:   getEnv("DRIVE_ROOT_FOLDER_ID", "data-backup"),
		MongoURIProduction:  getEnv("MONGO_URI_PRODUCTION", ""),
		MongoURIDevelopment: getEnv("MONGO_URI_DEVELOPMENT", ""),
		ProductionDBName:    getEnv("PRODUCTION_DB_NAME", "AIAPP"),
		DevelopmentDBName:   getEnv("DEVELOPMENT_DB_NAME", "PAYMENT"),
		BackupDir:           getEnv("BACKUP_DIR", "/var/backups/snapback"),
		BackupSchedule:      getEnv("BACKUP_SCHEDULE", "0 0 1 * * *"),
		SaveToRemote:        getEnvBool("SAVE_TO_REMOTE", true),
	}

	return cfg, nil
}

// Validate checks that the configuration required to run the service is
// present. Remote store settings are only required when uploads are enabled.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MongoURIProduction == "" {
		return fmt.Errorf("MONGO_URI_PRODUCTION is required")
	}
	if c.MongoURIDevelopment == "" {
		return fmt.Errorf("MONGO_URI_DEVELOPMENT is required")
	}
	if c.SaveToRemote {
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when SAVE_TO_REMOTE is set")
		}
		if c.DriveRootFolderID == "" {
			return fmt.Errorf("DRIVE_ROOT_FOLDER_ID is required when SAVE_TO_REMOTE is set")
		}
	}
	return nil
}

// MongoURI resolves the connection URI for an environment name
// ("production" or "development").
func (c *Config) MongoURI(target string) (string, error) {
	switch target {
	case "production":
		return c.MongoURIProduction, nil
	case "development":
		return c.MongoURIDevelopment, nil
	default:
		return "", fmt.Errorf("unknown restore target %q", target)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	MongoDB  MongoConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Tracking TrackingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `env:"SERVER_PORT" envDefault:"8080"`
}

// MongoConfig holds document-store configuration.
type MongoConfig struct {
	URI    string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	DBName string `env:"MONGO_DBNAME" envDefault:"maintenance_tracker"`
}

// RedisConfig holds redis configuration.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// StorageConfig holds object-storage configuration for photo uploads.
type StorageConfig struct {
	Endpoint      string        `env:"MINIO_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey     string        `env:"MINIO_ACCESS_KEY"`
	SecretKey     string        `env:"MINIO_SECRET_KEY"`
	Bucket        string        `env:"MINIO_BUCKET" envDefault:"maintenance-photos"`
	PublicURL     string        `env:"MINIO_PUBLIC_URL" envDefault:"http://localhost:9000"`
	UseSSL        bool          `env:"MINIO_USE_SSL" envDefault:"false"`
	UploadTimeout time.Duration `env:"PHOTO_UPLOAD_TIMEOUT" envDefault:"20s"`
}

// AuthConfig holds anonymous-session configuration.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET,required"`
}

// TrackingConfig holds issue-tracking behavior knobs.
type TrackingConfig struct {
	PageSize        int    `env:"PAGE_SIZE" envDefault:"10"`
	DailyIssueLimit int    `env:"DAILY_ISSUE_LIMIT" envDefault:"50"`
	WebhookURL      string `env:"NOTIFY_WEBHOOK_URL"`
}

// NewConfig creates a new Config from the environment.
func NewConfig() (*Config, error) {
	cfg := new(Config)
	err := env.Parse(cfg)

	return cfg, err
}

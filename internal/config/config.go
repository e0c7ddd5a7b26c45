package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the lineup relay.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"lineup-server"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"LINEUP_API_PORT" envDefault:"8380"`
	LogLevel        string        `env:"LINEUP_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LINEUP_LOG_FORMAT" envDefault:"console"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (required, no default)
	DatabaseURL string `env:"DB_POSTGRESQL_DSN,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Asset pipeline (the hosted encoding/streaming service)
	PipelineBaseURL       string        `env:"PIPELINE_BASE_URL" envDefault:"https://api.mux.com"`
	PipelineTokenID       string        `env:"PIPELINE_TOKEN_ID"`
	PipelineTokenSecret   string        `env:"PIPELINE_TOKEN_SECRET"`
	PipelineWebhookSecret string        `env:"PIPELINE_WEBHOOK_SECRET"`
	PipelineTimeout       time.Duration `env:"PIPELINE_TIMEOUT" envDefault:"15s"`
	PlaybackBaseURL       string        `env:"PLAYBACK_BASE_URL" envDefault:"https://stream.mux.com"`
	UploadCORSOrigin      string        `env:"UPLOAD_CORS_ORIGIN" envDefault:"*"`

	// Status reconciliation poller
	PollInterval time.Duration `env:"STATUS_POLL_INTERVAL" envDefault:"3s"`
	PollTimeout  time.Duration `env:"STATUS_POLL_TIMEOUT" envDefault:"5m"`

	// Detail image storage backend selection
	StorageBackend string `env:"IMAGE_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"

	// Local Storage Configuration
	LocalStoragePath    string `env:"IMAGE_LOCAL_STORAGE_PATH"`
	LocalStorageBaseURL string `env:"IMAGE_LOCAL_STORAGE_BASE_URL"`

	// S3 Storage Configuration
	S3Endpoint       string        `env:"IMAGE_S3_ENDPOINT"`
	S3PublicEndpoint string        `env:"IMAGE_S3_PUBLIC_ENDPOINT"`
	S3Region         string        `env:"IMAGE_S3_REGION" envDefault:"us-east-1"`
	S3Bucket         string        `env:"IMAGE_S3_BUCKET"`
	S3AccessKeyID    string        `env:"IMAGE_S3_ACCESS_KEY_ID"`
	S3SecretKey      string        `env:"IMAGE_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle   bool          `env:"IMAGE_S3_USE_PATH_STYLE" envDefault:"true"`
	S3PresignTTL     time.Duration `env:"IMAGE_S3_PRESIGN_TTL" envDefault:"720h"`

	// Detail image limits
	MaxImageBytes      int64         `env:"IMAGE_MAX_BYTES" envDefault:"10485760"`
	RemoteFetchTimeout time.Duration `env:"IMAGE_REMOTE_FETCH_TIMEOUT" envDefault:"15s"`

	// Authentication (admin content-management routes)
	AuthEnabled  bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer   string `env:"AUTH_ISSUER"`
	AuthAudience string `env:"AUTH_AUDIENCE"`
	AuthJWKSURL  string `env:"AUTH_JWKS_URL"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.PipelineBaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.PipelineBaseURL), "/")
	cfg.PlaybackBaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.PlaybackBaseURL), "/")
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.S3PublicEndpoint = strings.TrimSpace(cfg.S3PublicEndpoint)

	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = 10 * 1024 * 1024
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("STATUS_POLL_INTERVAL must be positive")
	}
	if cfg.PollTimeout < cfg.PollInterval {
		return nil, fmt.Errorf("STATUS_POLL_TIMEOUT must be at least one poll interval")
	}
	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if the local image storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}

// PipelineConfigured reports whether asset pipeline credentials are present.
func (c *Config) PipelineConfigured() bool {
	return strings.TrimSpace(c.PipelineTokenID) != "" && strings.TrimSpace(c.PipelineTokenSecret) != ""
}

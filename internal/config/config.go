package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ErrInvalid marks configuration problems. They are fatal at startup,
// before any cohort is processed.
var ErrInvalid = errors.New("invalid configuration")

const (
	// Existing-ID lookup page size bounds.
	MinLookupPageSize     = 500
	MaxLookupPageSize     = 2000
	DefaultLookupPageSize = 1000

	// Upsert chunk size default, matching the historical batch size.
	DefaultUploadChunkSize = 300
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// DatabaseURL may be empty: the existing-ID lookup then degrades to
	// full-reprocess mode. Commands that write to the store require it.
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`
	DBMinConns  int32  `envconfig:"RP_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"RP_DB_MAX_CONNS" default:"8"`

	DataDir        string `envconfig:"RP_DATA_DIR" default:"data"`
	AppsConfigPath string `envconfig:"RP_APPS_CONFIG" default:"config/apps.json"`

	LookupPageSize  int           `envconfig:"RP_LOOKUP_PAGE_SIZE" default:"1000"`
	UploadChunkSize int           `envconfig:"RP_UPLOAD_CHUNK_SIZE" default:"300"`
	StoreTimeout    time.Duration `envconfig:"RP_STORE_TIMEOUT" default:"30s"`

	FeedBaseURL string        `envconfig:"RP_FEED_BASE_URL" default:"https://itunes.apple.com"`
	FeedTimeout time.Duration `envconfig:"RP_FEED_TIMEOUT" default:"15s"`

	HTTPHost string `envconfig:"RP_HTTP_HOST" default:"0.0.0.0"`
	HTTPPort int    `envconfig:"RP_HTTP_PORT" default:"8090"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBMinConns < 0 {
		return fmt.Errorf("RP_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("RP_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("RP_DB_MIN_CONNS (%d) cannot exceed RP_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("RP_DATA_DIR is required")
	}
	if strings.TrimSpace(c.AppsConfigPath) == "" {
		return fmt.Errorf("RP_APPS_CONFIG is required")
	}
	if c.LookupPageSize < MinLookupPageSize || c.LookupPageSize > MaxLookupPageSize {
		return fmt.Errorf("RP_LOOKUP_PAGE_SIZE must be between %d and %d", MinLookupPageSize, MaxLookupPageSize)
	}
	if c.UploadChunkSize < 1 {
		return fmt.Errorf("RP_UPLOAD_CHUNK_SIZE must be >= 1")
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("RP_STORE_TIMEOUT must be positive")
	}
	if strings.TrimSpace(c.FeedBaseURL) == "" {
		return fmt.Errorf("RP_FEED_BASE_URL is required")
	}
	if c.FeedTimeout <= 0 {
		return fmt.Errorf("RP_FEED_TIMEOUT must be positive")
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("RP_HTTP_PORT must be a valid port")
	}
	return nil
}

// HasDatabase reports whether a store endpoint is configured at all.
func (c *Config) HasDatabase() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}

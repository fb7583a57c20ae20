package config

import (
	"errors"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Environment:     "local",
		LogLevel:        "info",
		DBMinConns:      1,
		DBMaxConns:      8,
		DataDir:         "data",
		AppsConfigPath:  "config/apps.json",
		LookupPageSize:  DefaultLookupPageSize,
		UploadChunkSize: DefaultUploadChunkSize,
		StoreTimeout:    30 * time.Second,
		FeedBaseURL:     "https://itunes.apple.com",
		FeedTimeout:     15 * time.Second,
		HTTPHost:        "0.0.0.0",
		HTTPPort:        8090,
	}
}

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected the default config to validate, got %v", err)
	}
}

func TestValidate_LookupPageSizeBounds(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.LookupPageSize = MinLookupPageSize - 1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error below the page size floor")
	}

	cfg.LookupPageSize = MaxLookupPageSize + 1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error above the page size ceiling")
	}

	cfg.LookupPageSize = MinLookupPageSize
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected the floor to be accepted, got %v", err)
	}
}

func TestValidate_ConnBounds(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.DBMinConns = 10
	cfg.DBMaxConns = 2
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error when min conns exceed max conns")
	}
}

func TestValidate_ChunkSizeAndTimeouts(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.UploadChunkSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for a zero chunk size")
	}

	cfg = validConfig()
	cfg.StoreTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected an error for a zero store timeout")
	}
}

func TestLoad_ReportsInvalidConfig(t *testing.T) {
	t.Setenv("RP_LOOKUP_PAGE_SIZE", "10")

	_, err := Load()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLoad_DefaultsApply(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LookupPageSize != DefaultLookupPageSize {
		t.Fatalf("unexpected lookup page size: %d", cfg.LookupPageSize)
	}
	if cfg.UploadChunkSize != DefaultUploadChunkSize {
		t.Fatalf("unexpected upload chunk size: %d", cfg.UploadChunkSize)
	}
	if cfg.HasDatabase() {
		t.Fatalf("expected no database to be configured")
	}
}

func TestHasDatabase(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if cfg.HasDatabase() {
		t.Fatalf("expected false for an empty DATABASE_URL")
	}
	cfg.DatabaseURL = "postgres://localhost/reviews"
	if !cfg.HasDatabase() {
		t.Fatalf("expected true for a configured DATABASE_URL")
	}

	var nilCfg *Config
	if nilCfg.HasDatabase() {
		t.Fatalf("expected false for a nil config")
	}
}

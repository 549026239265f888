package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	OutlineAPIKey string

	// Cache
	CacheBackend    string // memory, sqlite or pathstore
	CacheTTL        time.Duration
	CacheCleanup    time.Duration
	SQLitePath      string
	PathstoreURL    string
	PathstoreAPIKey string

	// Links
	PermalinkStyle string // pretty or query
	PermalinkBase  string

	// Outline defaults
	DefaultDepth int

	// Worker pool
	WorkerCount       int
	MaxQueueSize      int
	MaxConcurrentWarm int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		OutlineAPIKey: os.Getenv("OUTLINE_API_KEY"),

		CacheBackend:    strings.ToLower(envOr("CACHE_BACKEND", "memory")),
		CacheTTL:        envDuration("CACHE_TTL", 24*time.Hour),
		CacheCleanup:    envDuration("CACHE_CLEANUP_INTERVAL", 10*time.Minute),
		SQLitePath:      envOr("SQLITE_PATH", "data/outline-cache.db"),
		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		PermalinkStyle: strings.ToLower(envOr("PERMALINK_STYLE", "pretty")),
		PermalinkBase:  envOr("PERMALINK_BASE", ""),

		DefaultDepth: envInt("DEFAULT_DEPTH", 3),

		WorkerCount:       envInt("WORKER_COUNT", 4),
		MaxQueueSize:      envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentWarm: envInt("MAX_CONCURRENT_WARM", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.CacheCleanup <= 0 {
		cfg.CacheCleanup = 10 * time.Minute
	}
	if cfg.DefaultDepth < 1 || cfg.DefaultDepth > 5 {
		cfg.DefaultDepth = 3
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentWarm <= 0 {
		cfg.MaxConcurrentWarm = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.OutlineAPIKey == "" {
		return fmt.Errorf("OUTLINE_API_KEY is required")
	}
	switch c.CacheBackend {
	case "memory":
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite cache backend")
		}
	case "pathstore":
		if c.PathstoreAPIKey == "" {
			return fmt.Errorf("PATHSTORE_API_KEY is required for the pathstore cache backend")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	switch c.PermalinkStyle {
	case "pretty", "query":
	default:
		return fmt.Errorf("unknown PERMALINK_STYLE %q", c.PermalinkStyle)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

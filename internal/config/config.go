package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceSQLite  = "sqlite"
	SourceIndexer = "indexer"
)

type Config struct {
	Port           string
	ArticleSource  string
	DatabasePath   string
	SeedDatabase   bool
	IndexerURL     string
	IndexerTimeout time.Duration
	RequestTimeout time.Duration
	LogLevel       string
}

// Load reads the configuration from the environment.
// A .env file in the working directory is picked up for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	indexerTimeout, err := time.ParseDuration(getEnv("INDEXER_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid INDEXER_TIMEOUT: %w", err)
	}

	requestTimeout, err := parseOptionalDuration(getEnv("REQUEST_TIMEOUT", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		ArticleSource:  strings.ToLower(getEnv("ARTICLE_SOURCE", SourceSQLite)),
		DatabasePath:   getEnv("DATABASE_PATH", "./veritas.db"),
		SeedDatabase:   getEnv("SEED_DATABASE", "false") == "true",
		IndexerURL:     strings.TrimSuffix(getEnv("INDEXER_URL", "http://localhost:4000"), "/"),
		IndexerTimeout: indexerTimeout,
		RequestTimeout: requestTimeout,
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
	}

	return cfg, cfg.Validate()
}

// Validate reports settings the server can not start with.
func (c *Config) Validate() error {
	switch c.ArticleSource {
	case SourceSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required for article source %q", c.ArticleSource)
		}
	case SourceIndexer:
		if c.IndexerURL == "" {
			return fmt.Errorf("INDEXER_URL is required for article source %q", c.ArticleSource)
		}
	default:
		return fmt.Errorf("unknown ARTICLE_SOURCE %q", c.ArticleSource)
	}

	if c.IndexerTimeout < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}

	return nil
}

func parseOptionalDuration(value string) (time.Duration, error) {
	if value == "0" {
		return 0, nil
	}
	return time.ParseDuration(value)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

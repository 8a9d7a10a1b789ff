package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"sjsage522/listingtracker/internal/crawler"
	"sjsage522/listingtracker/internal/reconcile"
	apperrors "sjsage522/listingtracker/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Portal configuration
	BaseURL   string
	SearchURL string
	APIURL    string
	Source    string

	// Fetch configuration
	FetchCooldown time.Duration
	FetchTimeout  time.Duration
	ChromeBin     string

	// Memcache configuration
	MemcacheAddr string
	BlockTime    time.Duration

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Postgres configuration
	PostgresDSN   string
	PostgresBatch int

	// Pipeline configuration
	GeoDir         string
	VanishedPolicy string
	RunInterval    time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	cooldownMS := getEnvInt("FETCH_COOLDOWN_MS", 2000)
	timeoutSeconds := getEnvInt("FETCH_TIMEOUT_SECONDS", 30)
	blockSeconds := getEnvInt("BLOCK_TIME_SECONDS", 500)
	redisDB := getEnvInt("REDIS_DB", 0)
	redisStreamMaxLength := getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000)
	pgBatch := getEnvInt("PG_BATCH", 200)
	runInterval := getEnvInt("RUN_INTERVAL_SECONDS", 0)

	return Config{
		BaseURL:              getEnv("PORTAL_BASE_URL", "https://www.daft.ie"),
		SearchURL:            getEnv("PORTAL_SEARCH_URL", crawler.DefaultSearchURL),
		APIURL:               getEnv("PORTAL_API_URL", crawler.DefaultAPIURL),
		Source:               getEnv("SOURCE", crawler.SourceHTML),
		FetchCooldown:        time.Duration(cooldownMS) * time.Millisecond,
		FetchTimeout:         time.Duration(timeoutSeconds) * time.Second,
		ChromeBin:            getEnv("CHROME_BIN", ""),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		BlockTime:            time.Duration(blockSeconds) * time.Second,
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "listings"),
		RedisStreamMaxLength: redisStreamMaxLength,
		PostgresDSN:          getEnv("PG_DSN", ""),
		PostgresBatch:        pgBatch,
		GeoDir:               getEnv("GEO_DIR", ""),
		VanishedPolicy:       getEnv("VANISHED_POLICY", string(reconcile.PolicySold)),
		RunInterval:          time.Duration(runInterval) * time.Second,
		Environment:          getEnv("SCRAPER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the pipeline cannot run with
func (c Config) Validate() error {
	for name, raw := range map[string]string{
		"PORTAL_BASE_URL":   c.BaseURL,
		"PORTAL_SEARCH_URL": c.SearchURL,
		"PORTAL_API_URL":    c.APIURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return apperrors.NewConfiguration(fmt.Sprintf("%s must be an absolute URL, got %q", name, raw), err)
		}
	}

	if c.Source != crawler.SourceHTML && c.Source != crawler.SourceAPI {
		return apperrors.NewConfiguration(fmt.Sprintf("SOURCE must be %q or %q, got %q", crawler.SourceHTML, crawler.SourceAPI, c.Source), nil)
	}
	if _, err := reconcile.ParsePolicy(c.VanishedPolicy); err != nil {
		return apperrors.NewConfiguration("invalid VANISHED_POLICY", err)
	}
	if c.FetchCooldown <= 0 {
		return apperrors.NewConfiguration("FETCH_COOLDOWN_MS must be positive", nil)
	}
	if c.FetchTimeout <= 0 {
		return apperrors.NewConfiguration("FETCH_TIMEOUT_SECONDS must be positive", nil)
	}
	if c.RunInterval < 0 {
		return apperrors.NewConfiguration("RUN_INTERVAL_SECONDS must not be negative", nil)
	}
	if c.RedisAddr != "" && c.RedisStream == "" {
		return apperrors.NewConfiguration("REDIS_STREAM is required when REDIS_ADDR is set", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt reads an integer variable; a value that does not parse falls back
// to the default instead of silently becoming zero
func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return n
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sjsage522/listingtracker/pkg/errors"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "https://www.daft.ie", config.BaseURL)
	assert.Equal(t, "html", config.Source)
	assert.Equal(t, 2*time.Second, config.FetchCooldown)
	assert.Equal(t, 30*time.Second, config.FetchTimeout)
	assert.Equal(t, 500*time.Second, config.BlockTime)
	assert.Equal(t, "", config.RedisAddr)
	assert.Equal(t, "listings", config.RedisStream)
	assert.Equal(t, "sold", config.VanishedPolicy)
	assert.Equal(t, time.Duration(0), config.RunInterval)
	assert.NoError(t, config.Validate())

	// Test with environment variables
	t.Setenv("SOURCE", "api")
	t.Setenv("FETCH_COOLDOWN_MS", "250")
	t.Setenv("REDIS_ADDR", "redis.example.com:6379")
	t.Setenv("REDIS_DB", "1")
	t.Setenv("MEMCACHE_ADDR", "memcache.example.com:11211")
	t.Setenv("RUN_INTERVAL_SECONDS", "3600")
	t.Setenv("VANISHED_POLICY", "delisted")

	config = LoadConfig()
	assert.Equal(t, "api", config.Source)
	assert.Equal(t, 250*time.Millisecond, config.FetchCooldown)
	assert.Equal(t, "redis.example.com:6379", config.RedisAddr)
	assert.Equal(t, 1, config.RedisDB)
	assert.Equal(t, "memcache.example.com:11211", config.MemcacheAddr)
	assert.Equal(t, time.Hour, config.RunInterval)
	assert.Equal(t, "delisted", config.VanishedPolicy)
	assert.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.BaseURL = "/daft" }},
		{"unknown source", func(c *Config) { c.Source = "rss" }},
		{"unknown policy", func(c *Config) { c.VanishedPolicy = "gone" }},
		{"negative cooldown", func(c *Config) { c.FetchCooldown = -time.Second }},
		{"zero cooldown", func(c *Config) { c.FetchCooldown = 0 }},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"redis without stream", func(c *Config) { c.RedisAddr = "localhost:6379"; c.RedisStream = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := LoadConfig()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConfiguration))
		})
	}
}

func TestLoadConfigMalformedNumbers(t *testing.T) {
	t.Setenv("FETCH_COOLDOWN_MS", "2s")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "thirty")
	t.Setenv("PG_BATCH", "")

	config := LoadConfig()
	assert.Equal(t, 2*time.Second, config.FetchCooldown)
	assert.Equal(t, 30*time.Second, config.FetchTimeout)
	assert.Equal(t, 200, config.PostgresBatch)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigZeroCooldownRejected(t *testing.T) {
	t.Setenv("FETCH_COOLDOWN_MS", "0")

	config := LoadConfig()
	assert.Equal(t, time.Duration(0), config.FetchCooldown)
	err := config.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConfiguration))
}

func TestLoadSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
locations: [dublin-city, cork]
price_from: 200000
price_to: 450000
min_beds: 3
agents:
  - Sherry FitzGerald
  - DNG
`), 0o644))

	s, err := LoadSearch(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"dublin-city", "cork"}, s.Locations)
	assert.Equal(t, 200000, s.PriceFrom)
	assert.Equal(t, 450000, s.PriceTo)
	assert.Equal(t, 3, s.MinBeds)
	assert.Equal(t, []string{"Sherry FitzGerald", "DNG"}, s.Agents)
}

func TestLoadSearchErrors(t *testing.T) {
	s, err := LoadSearch("")
	require.NoError(t, err)
	assert.Empty(t, s.Locations)

	_, err = LoadSearch(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConfiguration))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_beds: [oops\n"), 0o644))
	_, err = LoadSearch(path)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeConfiguration))

	require.NoError(t, os.WriteFile(path, []byte("bedrooms: 3\n"), 0o644))
	_, err = LoadSearch(path)
	assert.Error(t, err)
}

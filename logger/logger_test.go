package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SCRAPER_ENVIRONMENT", "")
	assert.Equal(t, zerolog.DebugLevel, getLogLevel())

	t.Setenv("SCRAPER_ENVIRONMENT", "production")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())

	t.Setenv("LOG_LEVEL", "warn")
	assert.Equal(t, zerolog.WarnLevel, getLogLevel())

	t.Setenv("LOG_LEVEL", "loud")
	assert.Equal(t, zerolog.InfoLevel, getLogLevel())
}

func TestForComponent(t *testing.T) {
	Default = nil
	l := ForComponent("walker")
	assert.NotNil(t, l)
	assert.NotNil(t, Default)

	// Nop loggers accept events without output
	Nop().Info().Str("k", "v").Msg("dropped")
}

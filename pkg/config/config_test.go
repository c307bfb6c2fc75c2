package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "docker")
	t.Setenv("RIOT_API_KEYS", "")
	t.Setenv("RIOT_API_KEY", "")
	t.Setenv("RIOT_REGION", "")
	t.Setenv("RIOT_MAX_RETRIES", "")
	t.Setenv("RIOT_RATE_LIMIT_FALLBACK", "")
	t.Setenv("RIOT_UNAVAILABLE_DELAY", "")
	t.Setenv("RIOT_ROTATE_ON_RATE_LIMIT", "")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BUCKET_LOG_BUCKET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Riot.ApiKeys)
	assert.Equal(t, "NA1", cfg.Riot.Region)
	assert.Equal(t, 10, cfg.Retry.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Retry.RateLimitFallback)
	assert.Equal(t, 5*time.Second, cfg.Retry.UnavailableDelay)
	assert.False(t, cfg.Retry.RotateOnRateLimit)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.DatabaseEnabled())
	assert.False(t, cfg.BucketEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "docker")
	t.Setenv("RIOT_API_KEYS", "RGAPI-a, RGAPI-b,,")
	t.Setenv("RIOT_REGION", "EUW1")
	t.Setenv("RIOT_RATE_LIMIT_FALLBACK", "2.5")
	t.Setenv("RIOT_UNAVAILABLE_DELAY", "750ms")
	t.Setenv("RIOT_MAX_RETRIES", "3")
	t.Setenv("RIOT_ROTATE_ON_RATE_LIMIT", "true")
	t.Setenv("REDIS_HOST", "localhost")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"RGAPI-a", "RGAPI-b"}, cfg.Riot.ApiKeys)
	assert.Equal(t, "EUW1", cfg.Riot.Region)
	assert.Equal(t, 2500*time.Millisecond, cfg.Retry.RateLimitFallback)
	assert.Equal(t, 750*time.Millisecond, cfg.Retry.UnavailableDelay)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.True(t, cfg.Retry.RotateOnRateLimit)
	assert.True(t, cfg.RedisEnabled())
}

func TestSingleApiKeyFallback(t *testing.T) {
	t.Setenv("ENVIRONMENT", "docker")
	t.Setenv("RIOT_API_KEYS", "")
	t.Setenv("RIOT_API_KEY", "RGAPI-single")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"RGAPI-single"}, cfg.Riot.ApiKeys)
}

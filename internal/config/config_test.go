package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	for _, k := range []string{
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_REFILL_TOKENS",
		"RATE_LIMIT_REFILL_INTERVAL", "RATE_LIMIT_TTL", "RATE_LIMIT_KEY_STRATEGY",
		"RATE_LIMIT_BURST", "RATE_LIMIT_REFILL_EVERY",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Minute, cfg.TTL)
	assert.Equal(t, "ip_route", cfg.KeyStrategy)
	assert.Equal(t, "rl", cfg.Prefix)
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "-5")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	// TTL is raised to cover several refill intervals.
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadRateLimitConfigAliases(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "120")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "500ms")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 120, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 500*time.Millisecond, cfg.RefillInterval)
}

func TestLoadCacheConfigDefaults(t *testing.T) {
	for _, k := range []string{"CACHE_ENABLED", "CACHE_METHODS", "CACHE_TTL", "CACHE_KEY_STRATEGY"} {
		t.Setenv(k, "")
	}

	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, map[string]bool{"GET": true}, cfg.Methods)
	assert.Equal(t, 5*time.Second, cfg.TTL)
	assert.Equal(t, "route_query", cfg.KeyStrategy)
	assert.Equal(t, 1048576, cfg.MaxBodyBytes)
}

func TestParseMethods(t *testing.T) {
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, parseMethods("get, head"))
	assert.Equal(t, map[string]bool{"GET": true}, parseMethods("GET,,  "))
}

func TestParseDurFallsBackOnGarbage(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	cfg := LoadCacheConfig()
	assert.Equal(t, time.Second, cfg.TTL)
}

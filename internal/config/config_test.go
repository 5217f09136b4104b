package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, "issues.db", cfg.DatabasePath)
	assert.Empty(t, cfg.NATSURL)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.AIModel)
	assert.Equal(t, 2048, cfg.AIMaxTokens)
	assert.InDelta(t, 0.7, cfg.AITemperature, 0.0001)
	assert.Equal(t, 30*time.Second, cfg.AIRequestTimeout)
	assert.Equal(t, 60, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.TracingEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_PATH", "/tmp/tracker.db")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("AI_MODEL", "claude-3-5-haiku-20241022")
	t.Setenv("AI_MAX_TOKENS", "1024")
	t.Setenv("AI_TEMPERATURE", "0.2")
	t.Setenv("AI_REQUEST_TIMEOUT", "45s")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "/tmp/tracker.db", cfg.DatabasePath)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.Equal(t, "claude-3-5-haiku-20241022", cfg.AIModel)
	assert.Equal(t, 1024, cfg.AIMaxTokens)
	assert.InDelta(t, 0.2, cfg.AITemperature, 0.0001)
	assert.Equal(t, 45*time.Second, cfg.AIRequestTimeout)
	assert.True(t, cfg.TracingEnabled)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("AI_MAX_TOKENS", "not-a-number")
	t.Setenv("AI_TEMPERATURE", "warm")
	t.Setenv("AI_REQUEST_TIMEOUT", "soon")
	t.Setenv("TRACING_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 2048, cfg.AIMaxTokens)
	assert.InDelta(t, 0.7, cfg.AITemperature, 0.0001)
	assert.Equal(t, 30*time.Second, cfg.AIRequestTimeout)
	assert.False(t, cfg.TracingEnabled)
}

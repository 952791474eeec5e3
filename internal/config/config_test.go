package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "marketplace-api", cfg.ServiceName)
	assert.Equal(t, 24, cfg.SessionTTLHours)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9099")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,,c:9092")
	t.Setenv("SESSION_TTL_HOURS", "48")
	t.Setenv("AUTHORIZER_EMAIL", "auth@example.com")

	cfg := Load()

	assert.Equal(t, ":9099", cfg.HTTPAddr)
	assert.Equal(t, []string{"a:9092", "b:9092", "c:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 48, cfg.SessionTTLHours)
	assert.Equal(t, "auth@example.com", cfg.AuthorizerEmail)
}

func TestLoadBadInt(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "soon")
	assert.Equal(t, 24, Load().SessionTTLHours)
}

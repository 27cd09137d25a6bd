package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"BARRIER_ADDR", "LOG_LEVEL", "ADMIN_JWT_SIGNING_KEY", "REDIS_URL",
		"DATABASE_URL", "KAFKA_BROKERS", "AUDIT_TOPIC", "BARRIER_POLICY_FILE", "BARRIER_REFRESH_INTERVAL", "AUDIT_BUFFER_SIZE",
		"BARRIER_SEED_ALLOW_ORIGINS", "AUDIT_ADMITTED_SAMPLE_RATE"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.UsesDevSigningKey())
	assert.Equal(t, 5*time.Second, cfg.RefreshInterval)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Audit.Brokers)
	assert.Equal(t, "msgbarrier.audit", cfg.Audit.Topic)
	assert.Nil(t, cfg.SeedAllowOrigins)
	assert.InDelta(t, 0.1, cfg.Audit.AdmittedSampleRate, 1e-9)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("BARRIER_ADDR", ":9090")
	t.Setenv("ADMIN_JWT_SIGNING_KEY", "s3cret")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("BARRIER_REFRESH_INTERVAL", "250ms")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("BARRIER_SEED_ALLOW_ORIGINS", "1:Parachain(1000), 1:")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.False(t, cfg.UsesDevSigningKey())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Audit.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.RefreshInterval)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, []string{"1:Parachain(1000)", "1:"}, cfg.SeedAllowOrigins)
}

func TestFromEnvRejectsBadInterval(t *testing.T) {
	t.Setenv("BARRIER_REFRESH_INTERVAL", "soon")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "BARRIER_REFRESH_INTERVAL")

	t.Setenv("BARRIER_REFRESH_INTERVAL", "-1s")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "must be positive")
}

func TestFromEnvRejectsBadSampleRate(t *testing.T) {
	t.Setenv("AUDIT_ADMITTED_SAMPLE_RATE", "1.5")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "AUDIT_ADMITTED_SAMPLE_RATE")
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	platformstrings "msgbarrier/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	LogLevel      string
	JWTSigningKey string
	PolicyFile    string
	// RefreshInterval paces the origin-list and suspension-flag refreshers.
	RefreshInterval time.Duration
	// SeedAllowOrigins replaces the allow list at startup when set.
	SeedAllowOrigins []string

	Redis    RedisConfig
	Database DatabaseConfig
	Audit    AuditConfig
}

// RedisConfig configures the suspension flag backend. An empty URL keeps
// the flag in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures the origin list backend. An empty URL keeps
// origins in memory.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AuditConfig configures the audit sink. No brokers means audit events
// stay in memory.
type AuditConfig struct {
	Brokers    []string
	Topic      string
	BufferSize int
	// AdmittedSampleRate is the share of message_admitted events kept.
	AdmittedSampleRate float64
}

const devSigningKey = "dev-secret-key-change-in-production"

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:            getEnv("BARRIER_ADDR", ":8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		JWTSigningKey:   getEnv("ADMIN_JWT_SIGNING_KEY", devSigningKey),
		PolicyFile:      os.Getenv("BARRIER_POLICY_FILE"),
		RefreshInterval: 5 * time.Second,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Audit: AuditConfig{
			Topic:              getEnv("AUDIT_TOPIC", "msgbarrier.audit"),
			BufferSize:         1024,
			AdmittedSampleRate: 0.1,
		},
	}

	if raw := os.Getenv("BARRIER_REFRESH_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Server{}, fmt.Errorf("invalid BARRIER_REFRESH_INTERVAL %q: %w", raw, err)
		}
		if d <= 0 {
			return Server{}, fmt.Errorf("BARRIER_REFRESH_INTERVAL must be positive, got %s", d)
		}
		cfg.RefreshInterval = d
	}

	if raw := os.Getenv("AUDIT_BUFFER_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Server{}, fmt.Errorf("invalid AUDIT_BUFFER_SIZE %q", raw)
		}
		cfg.Audit.BufferSize = n
	}

	if raw := os.Getenv("AUDIT_ADMITTED_SAMPLE_RATE"); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 || rate > 1 {
			return Server{}, fmt.Errorf("invalid AUDIT_ADMITTED_SAMPLE_RATE %q: must be within [0, 1]", raw)
		}
		cfg.Audit.AdmittedSampleRate = rate
	}

	cfg.Audit.Brokers = platformstrings.SplitList(os.Getenv("KAFKA_BROKERS"))
	cfg.SeedAllowOrigins = platformstrings.SplitList(os.Getenv("BARRIER_SEED_ALLOW_ORIGINS"))

	return cfg, nil
}

// UsesDevSigningKey reports whether the admin plane runs with the
// built-in development key.
func (s Server) UsesDevSigningKey() bool {
	return s.JWTSigningKey == devSigningKey
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

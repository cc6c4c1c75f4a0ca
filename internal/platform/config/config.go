package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	strutil "party360/pkg/platform/strings"
)

// Config is the root configuration assembled from the environment.
type Config struct {
	Server      Server
	Log         Log
	Redis       RedisConfig
	Postgres    PostgresConfig
	Kafka       KafkaConfig
	Idempotency IdempotencyConfig
	Tokenizer   TokenizerConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	ShutdownTimeout time.Duration
}

// Log selects the slog handler and level.
type Log struct {
	Level  string
	Format string
}

// RedisConfig configures the shared store used for idempotency records.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the relational store for parties and the outbox.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// KafkaConfig configures the outbox relay.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	PollInterval time.Duration
}

// TokenizerConfig configures the SSN tokenization vendor.
type TokenizerConfig struct {
	BaseURL string
	Token   string
	Role    string
	Timeout time.Duration
}

// IdempotencyConfig governs record lifetimes, payload ceiling and follower
// polling. Defaults match the production profile.
type IdempotencyConfig struct {
	TTL            time.Duration
	PendingTTL     time.Duration
	MaxPayloadSize int
	WaitMax        time.Duration
	BackoffMin     time.Duration
	BackoffMax     time.Duration
}

// DefaultIdempotency returns the documented defaults: 48h retention, 30s
// pending claim, 256 KiB payloads, 1.5s follower wait, 25-100ms jitter.
func DefaultIdempotency() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:            172800 * time.Second,
		PendingTTL:     30 * time.Second,
		MaxPayloadSize: 262144,
		WaitMax:        1500 * time.Millisecond,
		BackoffMin:     25 * time.Millisecond,
		BackoffMax:     100 * time.Millisecond,
	}
}

// ErrWaitExceedsPendingTTL is reported by Validate when followers may give up
// waiting only after the leader's claim could already have expired. The
// coordinator stays correct in that case but duplicate execution becomes
// reachable, so callers should log it.
var ErrWaitExceedsPendingTTL = errors.New("idempotency wait bound is not below pending ttl")

// Validate rejects unusable settings. The wait/pending relation is returned
// as ErrWaitExceedsPendingTTL, which callers treat as a warning.
func (c IdempotencyConfig) Validate() error {
	switch {
	case c.TTL <= 0:
		return fmt.Errorf("idempotency ttl must be positive, got %s", c.TTL)
	case c.PendingTTL < time.Second:
		return fmt.Errorf("idempotency pending ttl must be at least 1s, got %s", c.PendingTTL)
	case c.MaxPayloadSize <= 0:
		return fmt.Errorf("idempotency max payload must be positive, got %d", c.MaxPayloadSize)
	case c.WaitMax <= 0:
		return fmt.Errorf("idempotency wait max must be positive, got %s", c.WaitMax)
	case c.BackoffMin <= 0 || c.BackoffMax <= 0:
		return fmt.Errorf("idempotency backoff window must be positive, got [%s, %s]", c.BackoffMin, c.BackoffMax)
	case c.BackoffMin > c.BackoffMax:
		return fmt.Errorf("idempotency backoff min %s exceeds max %s", c.BackoffMin, c.BackoffMax)
	}
	if c.WaitMax >= c.PendingTTL {
		return ErrWaitExceedsPendingTTL
	}
	return nil
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	idem := DefaultIdempotency()
	idem.TTL = durationFromEnv("IDEMPOTENCY_TTL_SECONDS", time.Second, idem.TTL)
	idem.PendingTTL = durationFromEnv("IDEMPOTENCY_PENDING_TTL_SECONDS", time.Second, idem.PendingTTL)
	idem.MaxPayloadSize = intFromEnv("IDEMPOTENCY_MAX_PAYLOAD_BYTES", idem.MaxPayloadSize)
	idem.WaitMax = durationFromEnv("IDEMPOTENCY_WAIT_MAX_MILLIS", time.Millisecond, idem.WaitMax)
	idem.BackoffMin = durationFromEnv("IDEMPOTENCY_WAIT_BACKOFF_MIN_MILLIS", time.Millisecond, idem.BackoffMin)
	idem.BackoffMax = durationFromEnv("IDEMPOTENCY_WAIT_BACKOFF_MAX_MILLIS", time.Millisecond, idem.BackoffMax)

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:            stringFromEnv("PARTY360_ADDR", ":8080"),
			JWTSigningKey:   jwtSigningKey,
			JWTIssuer:       stringFromEnv("JWT_ISSUER", "party360"),
			JWTAudience:     stringFromEnv("JWT_AUDIENCE", "party360-api"),
			ShutdownTimeout: durationFromEnv("SHUTDOWN_TIMEOUT_SECONDS", time.Second, 10*time.Second),
		},
		Log: Log{
			Level:  stringFromEnv("LOG_LEVEL", "info"),
			Format: stringFromEnv("LOG_FORMAT", "json"),
		},
		Redis: RedisConfig{
			URL:          stringFromEnv("REDIS_URL", "redis://localhost:6379"),
			PoolSize:     intFromEnv("REDIS_POOL_SIZE", 20),
			MinIdleConns: intFromEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  durationFromEnv("REDIS_DIAL_TIMEOUT_MILLIS", time.Millisecond, 2*time.Second),
			ReadTimeout:  durationFromEnv("REDIS_READ_TIMEOUT_MILLIS", time.Millisecond, 500*time.Millisecond),
			WriteTimeout: durationFromEnv("REDIS_WRITE_TIMEOUT_MILLIS", time.Millisecond, 500*time.Millisecond),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    intFromEnv("DATABASE_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    intFromEnv("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: durationFromEnv("DATABASE_CONN_MAX_LIFETIME_SECONDS", time.Second, 30*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:      strutil.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			Topic:        stringFromEnv("KAFKA_PARTY_TOPIC", "party.v1.events"),
			BatchSize:    intFromEnv("OUTBOX_BATCH_SIZE", 100),
			PollInterval: durationFromEnv("OUTBOX_POLL_INTERVAL_MILLIS", time.Millisecond, 500*time.Millisecond),
		},
		Idempotency: idem,
		Tokenizer: TokenizerConfig{
			BaseURL: os.Getenv("TOKENIZER_URL"),
			Token:   os.Getenv("TOKENIZER_TOKEN"),
			Role:    stringFromEnv("TOKENIZER_ROLE", "ssn"),
			Timeout: durationFromEnv("TOKENIZER_TIMEOUT_MILLIS", time.Millisecond, 2*time.Second),
		},
	}
}

func stringFromEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func durationFromEnv(key string, unit time.Duration, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return time.Duration(n) * unit
}


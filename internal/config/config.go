package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=restoran_pos port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string

	SessionCookieName string
	SessionTTL        time.Duration
	CookieSecure      bool

	RedisAddr     string // empty disables the cache
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	AMQPURL      string // empty disables kitchen publishing
	AMQPExchange string

	LogLevel  string
	LogFormat string

	IdempotencyTTL       time.Duration
	KitchenDelay         time.Duration
	KitchenScanSpec      string
	IdempotencyPurgeSpec string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] could not read .env: %v", err)
	}

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN default value in use, set your own Postgres DSN for production.")
	}
	if cfg.CORSOrigins == defaultCORSOrigins {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS default value in use, set your own domain for production.")
	}
	return cfg, nil
}

// FromEnv builds a Config from a lookup function so tests can inject values.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	var firstErr error
	num := func(key string, def int) int {
		raw := get(key, strconv.Itoa(def))
		n, err := strconv.Atoi(raw)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s must be a number: %q", key, raw)
		}
		return n
	}

	cfg := &Config{
		HTTPPort:    get("HTTP_PORT", "8080"),
		DatabaseDSN: get("DATABASE_DSN", defaultDSN),
		JWTSecret:   getenv("JWT_SECRET"),
		CORSOrigins: get("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),

		SessionCookieName: get("SESSION_COOKIE_NAME", "pos_session"),
		SessionTTL:        time.Duration(num("SESSION_TTL_HOURS", 12)) * time.Hour,
		CookieSecure:      get("COOKIE_SECURE", "false") == "true",

		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		RedisDB:       num("REDIS_DB", 0),
		CacheTTL:      time.Duration(num("CACHE_TTL_SECONDS", 300)) * time.Second,

		AMQPURL:      getenv("AMQP_URL"),
		AMQPExchange: get("AMQP_EXCHANGE", "kitchen_topic"),

		LogLevel:  get("LOG_LEVEL", "info"),
		LogFormat: get("LOG_FORMAT", "json"),

		IdempotencyTTL:       time.Duration(num("IDEMPOTENCY_TTL_HOURS", 24)) * time.Hour,
		KitchenDelay:         time.Duration(num("KITCHEN_DELAY_MINUTES", 15)) * time.Minute,
		KitchenScanSpec:      get("KITCHEN_SCAN_SPEC", "@every 1m"),
		IdempotencyPurgeSpec: get("IDEMPOTENCY_PURGE_SPEC", "@every 1h"),
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.IdempotencyTTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_HOURS must be positive")
	}
	if c.KitchenDelay <= 0 {
		return fmt.Errorf("KITCHEN_DELAY_MINUTES must be positive")
	}
	return nil
}

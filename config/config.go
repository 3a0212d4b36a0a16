package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Log         LogConfig
	JWT         JWTConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	RateLimiter RateLimiterConfig
	Breaker     BreakerConfig
	Bulkhead    BulkheadConfig
	Mapbox      MapboxConfig
	Dispatch    DispatchConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

type PostgresConfig struct {
	URL      string // DATABASE_URL takes precedence if set
	Host     string
	Port     int
	User     string
	Password string
	DB       string
	SSLMode  string
}

type RedisConfig struct {
	URL      string // REDIS_URL takes precedence if set
	Host     string
	Port     int
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string // empty disables event publishing
	Topic   string
}

type RateLimiterConfig struct {
	MaxRequests   int
	WindowSeconds int
}

type BreakerConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
}

type BulkheadConfig struct {
	LocationPool int
	MutationPool int
	AdminPool    int
}

type MapboxConfig struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
}

// DispatchConfig tunes the offer protocol and its guards.
type DispatchConfig struct {
	OfferTimeout       time.Duration // how long a candidate may sit on an offer
	RetryCooldown      time.Duration // minimum gap between assignment attempts per mission
	LockWait           time.Duration // bounded wait for the per-mission lock
	MaxRadiusKM        float64       // candidates beyond this travel distance are dropped
	RetryBatch         int           // missions retried per reachable event
	RetryQueueCapacity int
	LocationCacheTTL   int // seconds, redis last-known-position cache
	IdempotencyTTL     int // seconds
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getenvInt("SERVER_PORT", 8080),
			ShutdownTimeout: time.Duration(getenvInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Log: LogConfig{
			Level: getenv("LOG_LEVEL", "info"),
		},
		JWT: JWTConfig{
			Secret:      getenv("JWT_SECRET", ""),
			ExpiryHours: time.Duration(getenvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		},
		Postgres: PostgresConfig{
			URL:      getenv("DATABASE_URL", ""),
			Host:     getenv("POSTGRES_HOST", "localhost"),
			Port:     getenvInt("POSTGRES_PORT", 5432),
			User:     getenv("POSTGRES_USER", "postgres"),
			Password: getenv("POSTGRES_PASSWORD", "postgres"),
			DB:       getenv("POSTGRES_DB", "mission_dispatch"),
			SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getenv("REDIS_URL", ""),
			Host:     getenv("REDIS_HOST", "localhost"),
			Port:     getenvInt("REDIS_PORT", 6379),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: splitCSV(getenv("KAFKA_BROKERS", "")),
			Topic:   getenv("KAFKA_TOPIC", "dispatch-events"),
		},
		RateLimiter: RateLimiterConfig{
			MaxRequests:   getenvInt("RATE_LIMIT_MAX_REQUESTS", 100),
			WindowSeconds: getenvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		Breaker: BreakerConfig{
			FailureThreshold: getenvInt("BREAKER_FAILURE_THRESHOLD", 5),
			Cooldown:         time.Duration(getenvInt("BREAKER_COOLDOWN_SECONDS", 30)) * time.Second,
		},
		Bulkhead: BulkheadConfig{
			LocationPool: getenvInt("BULKHEAD_LOCATION_POOL", 200),
			MutationPool: getenvInt("BULKHEAD_MUTATION_POOL", 50),
			AdminPool:    getenvInt("BULKHEAD_ADMIN_POOL", 20),
		},
		Mapbox: MapboxConfig{
			BaseURL:     getenv("MAPBOX_BASE_URL", "https://api.mapbox.com"),
			AccessToken: getenv("MAPBOX_ACCESS_TOKEN", ""),
			Timeout:     time.Duration(getenvInt("MAPBOX_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Dispatch: DispatchConfig{
			OfferTimeout:       time.Duration(getenvInt("DISPATCH_OFFER_TIMEOUT_SECONDS", 30)) * time.Second,
			RetryCooldown:      time.Duration(getenvInt("DISPATCH_RETRY_COOLDOWN_SECONDS", 30)) * time.Second,
			LockWait:           time.Duration(getenvInt("DISPATCH_LOCK_WAIT_SECONDS", 5)) * time.Second,
			MaxRadiusKM:        getenvFloat("DISPATCH_MAX_RADIUS_KM", 15),
			RetryBatch:         getenvInt("DISPATCH_RETRY_BATCH", 5),
			RetryQueueCapacity: getenvInt("DISPATCH_RETRY_QUEUE_CAPACITY", 64),
			LocationCacheTTL:   getenvInt("DRIVER_LOCATION_CACHE_TTL_SECONDS", 60),
			IdempotencyTTL:     getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DB, p.SSLMode)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getenvFloat(key string, fallback float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return v
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

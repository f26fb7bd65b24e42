package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/srgjo27/altair_ticket/internal/platform/database"
)

type Config struct {
	// Server
	Environment string
	Port        string
	RelayPort   string
	JWTSecret   string

	// Storage
	StoreDriver string
	Database    database.Config

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SeatCacheTTL  time.Duration

	// Messaging
	RabbitMQURL string

	// Payments
	StripeSecretKey string
	PaymentCurrency string

	// Workers
	ReconcileInterval   time.Duration
	CascadeMaxAttempts  int
	CascadeRetryBackoff time.Duration

	// Monitoring
	EnableMetrics bool
}

// Load reads an optional .env file, then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	return &Config{
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnv("APP_PORT", "8080"),
		RelayPort:   getEnv("RELAY_PORT", "3000"),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		Database: database.Config{
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "altair_ticket"),
			MaxConns:   getEnvAsInt("DB_MAX_CONNS", 25),
			MaxRetries: getEnvAsInt("DB_MAX_RETRIES", 10),
			RetryDelay: getEnvAsDuration("DB_RETRY_DELAY", "2s"),
		},

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		SeatCacheTTL:  getEnvAsDuration("SEAT_CACHE_TTL", "30s"),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		PaymentCurrency: getEnv("PAYMENT_CURRENCY", "usd"),

		ReconcileInterval:   getEnvAsDuration("RECONCILE_INTERVAL", "1m"),
		CascadeMaxAttempts:  getEnvAsInt("CASCADE_MAX_ATTEMPTS", 3),
		CascadeRetryBackoff: getEnvAsDuration("CASCADE_RETRY_BACKOFF", "200ms"),

		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

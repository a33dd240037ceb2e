package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	"github.com/coradis/storefront/pkg/kafka"
	"github.com/coradis/storefront/services/common/database"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Port           string
	Env            string
	AllowedOrigins string

	Postgres database.PostgresConfig
	MongoURI string
	MongoDB  string
	RedisURL string

	SessionSecret string

	CartTTL         time.Duration
	CatalogCacheTTL time.Duration

	EventsTopicARN   string
	KafkaBrokers     []string
	KafkaTopic       string
	ImageBucket      string
	ImagePublicURL   string
	InventoryTable   string
	UseAWS           bool
	OTPExposeCode    bool
	RequirePhoneOTP  bool
	SeedCatalog      bool
	RateLimitPerMin  int
	OTPPhoneInterval time.Duration
	// TrustedProxies lists the gateway addresses allowed to set
	// X-Forwarded-For. Empty trusts nobody.
	TrustedProxies string
}

// Production reports whether cookies must be marked Secure.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("APP_ENV", "development"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DB:       os.Getenv("POSTGRES_DB"),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Africa/Abidjan"),
		},
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "coradis"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		CartTTL:          getDuration("CART_TTL", 7*24*time.Hour),
		CatalogCacheTTL:  getDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		EventsTopicARN:   os.Getenv("STOREFRONT_SNS_TOPIC_ARN"),
		KafkaBrokers:     kafka.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:       getEnv("KAFKA_EVENTS_TOPIC", "storefront-events"),
		ImageBucket:      os.Getenv("PRODUCT_IMAGE_BUCKET"),
		ImagePublicURL:   os.Getenv("PRODUCT_IMAGE_BASE_URL"),
		InventoryTable:   os.Getenv("INVENTORY_TABLE"),
		TrustedProxies:   os.Getenv("TRUSTED_PROXIES"),
		UseAWS:           getBool("AWS_ENABLED", true),
		OTPExposeCode:    getBool("OTP_EXPOSE_CODE", false),
		RequirePhoneOTP:  getBool("REQUIRE_PHONE_VERIFICATION", false),
		SeedCatalog:      getBool("SEED_CATALOG", true),
		RateLimitPerMin:  getInt("RATE_LIMIT_PER_MINUTE", 20),
		OTPPhoneInterval: getDuration("OTP_PHONE_INTERVAL", 30*time.Second),
	}

	// Override DB credentials from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			sm := aws_pkg.NewSecretsClient(awsCfg)
			if m, err := sm.GetSecretMap(context.Background(), "storefront/DB_CREDENTIALS"); err == nil {
				applySecrets(cfg, m)
			}
		}
	}

	if cfg.Postgres.User == "" || cfg.Postgres.Password == "" || cfg.Postgres.DB == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI not set")
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	return cfg, nil
}

func applySecrets(cfg *Config, m map[string]string) {
	set := func(dst *string, key string) {
		if v, ok := m[key]; ok && v != "" {
			*dst = v
		}
	}
	set(&cfg.Postgres.User, "POSTGRES_USER")
	set(&cfg.Postgres.Password, "POSTGRES_PASSWORD")
	set(&cfg.Postgres.DB, "POSTGRES_DB")
	set(&cfg.Postgres.Host, "POSTGRES_HOST")
	set(&cfg.Postgres.Port, "POSTGRES_PORT")
	set(&cfg.MongoURI, "MONGO_URI")
	set(&cfg.SessionSecret, "SESSION_SECRET")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

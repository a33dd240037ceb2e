package main

import (
	"context"
	"fmt"
	"os"
	"time"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	"github.com/coradis/storefront/pkg/kafka"
	"github.com/coradis/storefront/services/common/database"
	"github.com/coradis/storefront/services/notification-service/sender"
)

// Config holds all configuration for the notification service.
type Config struct {
	Port          string
	Env           string
	Postgres      database.PostgresConfig
	SessionSecret string

	QueueURL  string
	QueueName string

	// KafkaBrokers switches the event source from SQS to Kafka.
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string

	Twilio       sender.TwilioConfig
	SMTP         sender.SMTPConfig
	ShopEmail    string
	RetryBackoff time.Duration

	TrustedProxies string
}

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8091"),
		Env:  getEnv("APP_ENV", "development"),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DB:       os.Getenv("POSTGRES_DB"),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Africa/Abidjan"),
		},
		SessionSecret: os.Getenv("SESSION_SECRET"),
		QueueURL:      os.Getenv("SQS_QUEUE_URL"),
		QueueName:     getEnv("SQS_QUEUE_NAME", "storefront-notifications"),
		KafkaBrokers:  kafka.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    getEnv("KAFKA_EVENTS_TOPIC", "storefront-events"),
		KafkaGroup:    getEnv("KAFKA_GROUP_ID", "notification-service"),
		Twilio: sender.TwilioConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			FromNumber: os.Getenv("TWILIO_WHATSAPP_FROM"),
		},
		SMTP: sender.SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     os.Getenv("SMTP_FROM"),
		},
		ShopEmail:      getEnv("SHOP_EMAIL", "contact@coradis.ci"),
		RetryBackoff:   time.Second,
		TrustedProxies: os.Getenv("TRUSTED_PROXIES"),
	}
	if v, err := time.ParseDuration(os.Getenv("NOTIFICATION_RETRY_BACKOFF")); err == nil && v >= 0 {
		cfg.RetryBackoff = v
	}

	// Override DB credentials from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			sm := aws_pkg.NewSecretsClient(awsCfg)
			if m, err := sm.GetSecretMap(context.Background(), "notification/DB_CREDENTIALS"); err == nil {
				for key, dst := range map[string]*string{
					"POSTGRES_USER":      &cfg.Postgres.User,
					"POSTGRES_PASSWORD":  &cfg.Postgres.Password,
					"POSTGRES_DB":        &cfg.Postgres.DB,
					"POSTGRES_HOST":      &cfg.Postgres.Host,
					"POSTGRES_PORT":      &cfg.Postgres.Port,
					"TWILIO_AUTH_TOKEN":  &cfg.Twilio.AuthToken,
					"TWILIO_ACCOUNT_SID": &cfg.Twilio.AccountSID,
					"SMTP_PASS":          &cfg.SMTP.Password,
				} {
					if v, ok := m[key]; ok && v != "" {
						*dst = v
					}
				}
			}
		}
	}

	if cfg.Postgres.User == "" || cfg.Postgres.Password == "" || cfg.Postgres.DB == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

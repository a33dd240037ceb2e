package main

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port            string
	Env             string
	AllowedOrigins  string
	SessionSecret   string
	StorefrontURL   string
	NotificationURL string
	UpstreamTimeout time.Duration
	// TrustedProxies is empty unless a load balancer sits in front.
	TrustedProxies string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8000"),
		Env:             getEnv("APP_ENV", "development"),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "http://localhost:5173"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		StorefrontURL:   getEnv("STOREFRONT_SERVICE_URL", "http://storefront-service:8080"),
		NotificationURL: getEnv("NOTIFICATION_SERVICE_URL", "http://notification-service:8091"),
		UpstreamTimeout: 30 * time.Second,
		TrustedProxies:  os.Getenv("TRUSTED_PROXIES"),
	}
	if v := os.Getenv("UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid UPSTREAM_TIMEOUT: %w", err)
		}
		cfg.UpstreamTimeout = d
	}
	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

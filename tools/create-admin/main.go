// Command create-admin seeds the default dashboard administrator.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/coradis/storefront/services/common/database"
	"github.com/coradis/storefront/services/common/logger"
	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
	"github.com/coradis/storefront/services/storefront-service/services"
)

func main() {
	_ = godotenv.Load()

	var username, email, password string
	flag.StringVar(&username, "username", "admin", "admin username")
	flag.StringVar(&email, "email", "admin@coradis.ci", "admin e-mail")
	flag.StringVar(&password, "password", os.Getenv("ADMIN_PASSWORD"), "admin password (default $ADMIN_PASSWORD)")
	flag.Parse()

	log, err := logger.Initialize(getEnv("APP_ENV", "development"))
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if password == "" {
		log.Fatal("password required: pass -password or set ADMIN_PASSWORD")
	}

	db, err := database.ConnectPostgres(database.PostgresConfig{
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		DB:       os.Getenv("POSTGRES_DB"),
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnv("POSTGRES_PORT", "5432"),
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		TimeZone: getEnv("POSTGRES_TIMEZONE", "Africa/Abidjan"),
	}, log, &models.Admin{})
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := repository.NewAdminRepository(db)
	if _, err := repo.FindByUsername(ctx, username); err == nil {
		log.Info("Admin already exists, nothing to do", zap.String("username", username))
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Fatal("Admin lookup failed", zap.Error(err))
	}

	admin, svcErr := services.NewAdminService(repo, log).CreateAdmin(ctx, &models.CreateAdminRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if svcErr != nil {
		log.Fatal("Admin creation failed", zap.Int("status", svcErr.StatusCode), zap.String("error", svcErr.Message))
	}
	log.Info("Admin created", zap.Uint("id", admin.ID), zap.String("username", admin.Username))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

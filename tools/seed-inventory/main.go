// Command seed-inventory copies catalog availability from Postgres into the
// DynamoDB inventory table used for stock reservations.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	ddb "github.com/coradis/storefront/pkg/dynamodb"
	"github.com/coradis/storefront/services/common/database"
	"github.com/coradis/storefront/services/common/logger"
	"github.com/coradis/storefront/services/storefront-service/repository"
)

func main() {
	_ = godotenv.Load()

	var table string
	var overwrite, dryRun bool
	flag.StringVar(&table, "table", os.Getenv("INVENTORY_TABLE"), "DynamoDB inventory table")
	flag.BoolVar(&overwrite, "overwrite", false, "reset rows that already exist")
	flag.BoolVar(&dryRun, "dry-run", false, "print what would be written")
	flag.Parse()

	log, err := logger.Initialize(getEnv("APP_ENV", "development"))
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if table == "" {
		log.Fatal("inventory table required: pass -table or set INVENTORY_TABLE")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.ConnectPostgres(database.PostgresConfig{
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		DB:       os.Getenv("POSTGRES_DB"),
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnv("POSTGRES_PORT", "5432"),
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		TimeZone: getEnv("POSTGRES_TIMEZONE", "Africa/Abidjan"),
	}, log)
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}
	defer database.Close(db)

	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatal("AWS config failed", zap.Error(err))
	}

	products, err := repository.NewProductRepository(db).List(ctx, "")
	if err != nil {
		log.Fatal("Failed to list products", zap.Error(err))
	}
	inventory := repository.NewInventoryRepository(ddb.NewClientFromConfig(awsCfg), table)

	var written, skipped, failed int
	for _, p := range products {
		if !overwrite {
			if _, err := inventory.Get(ctx, p.ID); err == nil {
				skipped++
				continue
			} else if !errors.Is(err, repository.ErrNotFound) {
				log.Warn("Failed to read stock level", zap.String("product_id", p.ID), zap.Error(err))
				failed++
				continue
			}
		}
		if dryRun {
			log.Info("Would write stock level", zap.String("product_id", p.ID), zap.Int("available", p.Available))
			written++
			continue
		}
		if err := inventory.Set(ctx, p.ID, p.Available); err != nil {
			log.Warn("Failed to write stock level", zap.String("product_id", p.ID), zap.Error(err))
			failed++
			continue
		}
		written++
	}

	log.Info("Inventory seed finished",
		zap.Int("written", written),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Bool("dry_run", dryRun),
	)
	if failed > 0 {
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	ddb "github.com/coradis/storefront/pkg/dynamodb"
	"github.com/coradis/storefront/pkg/kafka"
	"github.com/coradis/storefront/services/common/auth"
	"github.com/coradis/storefront/services/common/database"
	apperrors "github.com/coradis/storefront/services/common/errors"
	"github.com/coradis/storefront/services/common/logger"
	"github.com/coradis/storefront/services/common/middleware"
	"github.com/coradis/storefront/services/storefront-service/controllers"
	sfdb "github.com/coradis/storefront/services/storefront-service/database"
	"github.com/coradis/storefront/services/storefront-service/models"
	"github.com/coradis/storefront/services/storefront-service/repository"
	"github.com/coradis/storefront/services/storefront-service/routes"
	"github.com/coradis/storefront/services/storefront-service/services"
)

const serviceName = "storefront-service"

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	ctx := context.Background()

	// AWS-backed components stay disabled when the SDK config cannot be loaded.
	var awsCfg *sdkaws.Config
	if cfg.UseAWS {
		if c, err := aws_pkg.LoadAWSConfig(ctx); err == nil {
			awsCfg = &c
		}
	}

	var logSink io.Writer
	if awsCfg != nil {
		if cw, err := aws_pkg.NewCloudWatchLogsClient(ctx, *awsCfg, serviceName); err == nil && cw.IsEnabled() {
			logSink = cw
		}
	}
	log, err := logger.InitializeWithWriter(cfg.Env, logSink)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if awsCfg == nil {
		log.Warn("AWS config unavailable, events, images, metrics and inventory are disabled")
	}

	// Datastores
	pg, err := database.ConnectPostgres(cfg.Postgres, log,
		&models.Admin{}, &models.Product{}, &models.Order{}, &models.OrderItem{}, &models.ContactMessage{})
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	mongoClient, mdb, err := sfdb.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB, log)
	if err != nil {
		log.Fatal("MongoDB connection failed", zap.Error(err))
	}

	rdb, err := sfdb.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("Redis connection failed", zap.Error(err))
	}

	// Repositories
	adminRepo := repository.NewAdminRepository(pg)
	orderRepo := repository.NewOrderRepository(pg)
	productRepo := repository.NewProductRepository(pg)
	contactRepo := repository.NewContactRepository(pg)
	customerRepo := repository.NewCustomerRepository(mdb)
	cardRepo := repository.NewScratchCardRepository(mdb)
	favoriteRepo := repository.NewFavoriteRepository(mdb)
	otpRepo := repository.NewOTPRepository(mdb)
	cartRepo := repository.NewCartRepository(rdb, cfg.CartTTL)
	catalogCache := repository.NewCatalogCache(rdb, cfg.CatalogCacheTTL)

	indexCtx, cancelIdx := context.WithTimeout(ctx, 30*time.Second)
	for name, ensure := range map[string]func(context.Context) error{
		"customers":     customerRepo.EnsureIndexes,
		"scratch_cards": cardRepo.EnsureIndexes,
		"otp_codes":     otpRepo.EnsureIndexes,
	} {
		if err := ensure(indexCtx); err != nil {
			log.Fatal("Failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
	cancelIdx()

	// AWS-backed collaborators
	var (
		snsPublisher aws_pkg.SNSPublisher
		presigner    services.ImagePresigner
		inventory    repository.InventoryRepository
		metrics      *aws_pkg.MetricsClient
	)
	if awsCfg != nil {
		snsPublisher = aws_pkg.NewSNSClient(*awsCfg)
		metrics = aws_pkg.NewMetricsClient(*awsCfg)
		if cfg.ImageBucket != "" {
			presigner = aws_pkg.NewImagePresigner(*awsCfg, cfg.ImageBucket, cfg.ImagePublicURL)
		}
		if cfg.InventoryTable != "" {
			inventory = repository.NewInventoryRepository(ddb.NewClientFromConfig(*awsCfg), cfg.InventoryTable)
		}
	}
	var recorder services.MetricsRecorder
	if metrics != nil {
		recorder = metrics
	}

	// Services
	var events services.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()
		events = services.NewEventPublisher(producer, cfg.KafkaTopic, log)
	} else {
		events = services.NewEventPublisher(snsPublisher, cfg.EventsTopicARN, log)
	}
	phoneLimiter := middleware.NewRateLimiter(rate.Every(cfg.OTPPhoneInterval), 3, time.Hour)

	adminService := services.NewAdminService(adminRepo, log)
	loyaltyService := services.NewLoyaltyService(customerRepo, cardRepo, events, nil, log)
	customerService := services.NewCustomerService(customerRepo, orderRepo, favoriteRepo, otpRepo, loyaltyService, nil,
		services.CustomerServiceConfig{RequireVerifiedPhone: cfg.RequirePhoneOTP}, log)
	orderService := services.NewOrderService(orderRepo, loyaltyService, inventory, events, recorder, log)
	otpService := services.NewOTPService(otpRepo, customerRepo, events, phoneLimiter, recorder, nil,
		services.OTPServiceConfig{ExposeCode: cfg.OTPExposeCode}, log)
	catalogService := services.NewCatalogService(productRepo, catalogCache, presigner, recorder, log)
	cartService := services.NewCartService(cartRepo, catalogService, log)
	contactService := services.NewContactService(contactRepo, events, recorder, log)

	if cfg.SeedCatalog {
		if err := catalogService.Seed(ctx); err != nil {
			log.Fatal("Catalog seed failed", zap.Error(err))
		}
	}

	sessions, err := auth.NewSessions(cfg.SessionSecret, cfg.Production())
	if err != nil {
		log.Fatal("Session setup failed", zap.Error(err))
	}

	// Router
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	if err := middleware.TrustProxies(r, cfg.TrustedProxies); err != nil {
		log.Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
	}
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(apperrors.ErrorMiddleware())
	r.NoRoute(apperrors.NotFound)
	if metrics != nil {
		r.Use(middleware.MetricsMiddleware(metrics, serviceName))
	}

	// Request timeout
	r.Use(func(c *gin.Context) {
		reqCtx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(reqCtx)
		c.Next()
	})

	ipLimiter := middleware.NewRateLimiter(rate.Limit(float64(cfg.RateLimitPerMin)/60), cfg.RateLimitPerMin, 10*time.Minute)

	routes.RegisterRoutes(r, routes.Controllers{
		Health: controllers.NewHealthController(serviceName, map[string]controllers.Pinger{
			"postgres": func(c context.Context) error {
				sqlDB, err := pg.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(c)
			},
			"mongodb": func(c context.Context) error { return mongoClient.Ping(c, nil) },
			"redis":   func(c context.Context) error { return rdb.Ping(c).Err() },
		}),
		Auth:      controllers.NewAuthController(adminService, sessions, log),
		Customers: controllers.NewCustomerController(customerService, loyaltyService, sessions, log),
		Orders:    controllers.NewOrderController(orderService, cartService, log),
		OTP:       controllers.NewOTPController(otpService),
		Products:  controllers.NewProductController(catalogService),
		Cart:      controllers.NewCartController(cartService, cfg.Production()),
		Contact:   controllers.NewContactController(contactService),
	}, sessions, middleware.RateLimitMiddleware(ipLimiter))

	// HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Storefront service started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if err := rdb.Close(); err != nil {
		log.Error("Redis close error", zap.Error(err))
	}
	if err := sfdb.DisconnectMongo(mongoClient); err != nil {
		log.Error("MongoDB close error", zap.Error(err))
	}
	if err := database.Close(pg); err != nil {
		log.Error("Database close error", zap.Error(err))
	}

	log.Info("Storefront service stopped gracefully")
}

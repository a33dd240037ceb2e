package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	aws_pkg "github.com/coradis/storefront/pkg/aws"
	"github.com/coradis/storefront/pkg/kafka"
	"github.com/coradis/storefront/services/common/auth"
	"github.com/coradis/storefront/services/common/database"
	"github.com/coradis/storefront/services/common/logger"
	"github.com/coradis/storefront/services/common/middleware"
	"github.com/coradis/storefront/services/notification-service/consumer"
	"github.com/coradis/storefront/services/notification-service/controllers"
	"github.com/coradis/storefront/services/notification-service/models"
	"github.com/coradis/storefront/services/notification-service/repository"
	"github.com/coradis/storefront/services/notification-service/routes"
	"github.com/coradis/storefront/services/notification-service/sender"
	"github.com/coradis/storefront/services/notification-service/services"
)

const serviceName = "notification-service"

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	ctx := context.Background()
	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		panic("aws config load failed: " + err.Error())
	}

	var logSink io.Writer
	if cw, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, serviceName); err == nil && cw.IsEnabled() {
		logSink = cw
	}
	log, err := logger.InitializeWithWriter(cfg.Env, logSink)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Database
	db, err := database.ConnectPostgres(cfg.Postgres, log, &models.NotificationLog{})
	if err != nil {
		log.Fatal("DB connection failed", zap.Error(err))
	}

	metricsClient := aws_pkg.NewMetricsClient(awsCfg)

	// Senders
	emailSender := sender.NewSMTPSender(cfg.SMTP)
	whatsAppSender := sender.NewTwilioSender(cfg.Twilio)

	// Dependency injection
	notificationRepo := repository.NewNotificationRepository(db)
	notificationService, err := services.NewNotificationService(notificationRepo, emailSender, whatsAppSender, metricsClient,
		services.Config{ShopEmail: cfg.ShopEmail, RetryBackoff: cfg.RetryBackoff}, log)
	if err != nil {
		log.Fatal("Failed to initialize notification service", zap.Error(err))
	}
	notificationController := controllers.NewNotificationController(notificationService, log)

	sessions, err := auth.NewSessions(cfg.SessionSecret, cfg.Env == "production")
	if err != nil {
		log.Fatal("Session setup failed", zap.Error(err))
	}

	// Event source
	var source consumer.Source
	if len(cfg.KafkaBrokers) > 0 {
		source = kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, log)
	} else {
		queueURL := cfg.QueueURL
		if queueURL == "" {
			queueURL, err = aws_pkg.GetQueueURL(ctx, awsCfg, cfg.QueueName)
			if err != nil {
				log.Fatal("Failed to resolve SQS queue", zap.String("queue", cfg.QueueName), zap.Error(err))
			}
		}
		source = aws_pkg.NewSQSConsumer(awsCfg, queueURL, log)
	}
	eventConsumer := consumer.NewEventConsumer(notificationService, log)

	// Router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	if err := middleware.TrustProxies(r, cfg.TrustedProxies); err != nil {
		log.Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
	}
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.MetricsMiddleware(metricsClient, serviceName))

	// Request timeout
	r.Use(func(c *gin.Context) {
		reqCtx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(reqCtx)
		c.Next()
	})

	routes.RegisterRoutes(r, notificationController, sessions)

	// Start event consumer
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	go eventConsumer.Start(consumerCtx, source)

	// HTTP server
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Info("Notification service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Initiating graceful shutdown...")
	consumerCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if err := database.Close(db); err != nil {
		log.Error("Database close error", zap.Error(err))
	}

	log.Info("Notification service stopped gracefully")
}

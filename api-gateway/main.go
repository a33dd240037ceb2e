package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/coradis/storefront/api-gateway/proxy"
	"github.com/coradis/storefront/api-gateway/routes"
	"github.com/coradis/storefront/services/common/auth"
	"github.com/coradis/storefront/services/common/logger"
	"github.com/coradis/storefront/services/common/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := LoadConfig()
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	log, err := logger.Initialize(cfg.Env)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	sessions, err := auth.NewSessions(cfg.SessionSecret, cfg.Env == "production")
	if err != nil {
		log.Fatal("Session setup failed", zap.Error(err))
	}

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
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	routes.RegisterRoutes(r, routes.Upstreams{
		Storefront:    proxy.NewForwarder(cfg.StorefrontURL, "/api", cfg.UpstreamTimeout, log),
		Notifications: proxy.NewForwarder(cfg.NotificationURL, "/notifications", cfg.UpstreamTimeout, log),
	}, sessions)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("API gateway listening",
			zap.String("port", cfg.Port),
			zap.String("storefront", cfg.StorefrontURL),
			zap.String("notifications", cfg.NotificationURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	log.Info("API gateway stopped")
}

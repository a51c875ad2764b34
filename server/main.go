package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"showtix/api/routes"
	"showtix/internal/notifications"
	"showtix/internal/shared/config"
	"showtix/internal/shared/database"
	"showtix/pkg/logger"
	"showtix/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Initialize DB (runs migrations)
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Rate Limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiterConfig := &ratelimit.Config{
			Enabled:          cfg.RateLimit.Enabled,
			WindowDuration:   cfg.RateLimit.WindowDuration,
			DefaultRequests:  cfg.RateLimit.DefaultRequests,
			PublicRequests:   cfg.RateLimit.PublicRequests,
			CheckoutRequests: cfg.RateLimit.CheckoutRequests,
			WebhookRequests:  cfg.RateLimit.WebhookRequests,
			AdminRequests:    cfg.RateLimit.AdminRequests,
			WhitelistedIPs:   cfg.RateLimit.WhitelistedIPs,
		}

		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), rateLimiterConfig)
		appLogger.Info("Rate limiter initialized",
			slog.Bool("enabled", cfg.RateLimit.Enabled),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Initialize notification service
	notificationService, err := buildNotificationService(cfg)
	if err != nil {
		appLogger.Error("Failed to initialize notification service", slog.Any("error", err))
		os.Exit(1)
	}

	notificationCtx, notificationCancel := context.WithCancel(context.Background())
	defer notificationCancel()

	if err := notificationService.Start(notificationCtx); err != nil {
		appLogger.Error("Failed to start notification service", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		appLogger.Info("Stopping notification service...")
		if err := notificationService.Stop(); err != nil {
			appLogger.Error("Error stopping notification service", slog.Any("error", err))
		}
	}()
	appLogger.Info("Notification service started", slog.Bool("kafka", cfg.Kafka.Enabled))

	// Setup router with rate limiter
	appRouter := routes.NewRouter(cfg, db, notificationService)
	router := setupRouter(cfg, appRouter, rateLimiter)

	// Retry-queue worker: retries queued payment creations and sweeps
	// orphaned orders. Disable it to run this process as API-only.
	worker := appRouter.NewJobWorker()
	if cfg.Worker.Enabled {
		workerCtx, workerCancel := context.WithCancel(context.Background())
		defer workerCancel()

		worker.Start(workerCtx)
		defer worker.Stop()
		appLogger.Info("Retry-queue worker started",
			slog.Duration("poll_interval", cfg.Worker.PollInterval),
			slog.Int("max_executions", cfg.Worker.MaxExecutions),
		)
	} else {
		appLogger.Info("Retry-queue worker disabled")
	}

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s%s/status", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", cfg.APIVersion),
			slog.Bool("redis_cache", (db.Redis != nil)),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// buildNotificationService picks the transport: Kafka plus consumer workers
// when enabled, otherwise synchronous in-process delivery. Both end at the
// same email service, which falls back to a logging mock without SMTP config.
func buildNotificationService(cfg *config.Config) (notifications.NotificationService, error) {
	if cfg.Kafka.Enabled {
		return notifications.NewEmailNotificationService(&notifications.ServiceConfig{
			KafkaBrokers:      cfg.Kafka.Brokers,
			NotificationTopic: cfg.Kafka.NotificationTopic,
			DeadLetterTopic:   cfg.Kafka.DeadLetterTopic,
			ConsumerGroupID:   cfg.Kafka.ConsumerGroup,
			SMTPHost:          cfg.Email.SMTPHost,
			SMTPPort:          cfg.Email.SMTPPort,
			SMTPUsername:      cfg.Email.SMTPUsername,
			SMTPPassword:      cfg.Email.SMTPPassword,
			SMTPFromEmail:     cfg.Email.FromEmail,
			SMTPFromName:      cfg.Email.FromName,
		})
	}

	var emailService notifications.EmailService
	if cfg.Email.SMTPHost != "" {
		smtpService, err := notifications.NewSMTPEmailService(&notifications.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			UseTLS:    true,
		})
		if err != nil {
			return nil, err
		}
		emailService = smtpService
	} else {
		emailService = notifications.NewMockEmailService()
	}

	return notifications.NewDirectNotificationService(emailService), nil
}

func setupRouter(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}

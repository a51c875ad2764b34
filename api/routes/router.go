package routes

import (
	"net/http"
	"time"

	"showtix/internal/coupons"
	"showtix/internal/jobs"
	"showtix/internal/notifications"
	"showtix/internal/orders"
	"showtix/internal/payments"
	"showtix/internal/shared/config"
	"showtix/internal/shared/database"
	"showtix/internal/shared/middleware"
	"showtix/internal/shows"
	"showtix/internal/tickets"
	"showtix/pkg/cache"

	"github.com/gin-gonic/gin"
)

// How often the orphaned-order sweep re-enqueues itself after the previous
// run completes.
const orphanSweepInterval = 15 * time.Minute

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	notifier notifications.NotificationService

	// Wired during SetupRoutes; the job worker in main needs them to
	// register its handlers.
	showService    shows.Service
	ordersRepo     orders.Repository
	paymentRepo    payments.Repository
	paymentService payments.Service
	jobsRepo       jobs.Repository
}

// NewRouter creates a new router instance. notifier may be a Kafka-backed or
// direct-delivery implementation; the routes only see the interface.
func NewRouter(cfg *config.Config, db *database.DB, notifier notifications.NotificationService) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		notifier: notifier,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Shows must come first: checkout and payments depend on the
		// show service for availability invalidation.
		r.setupShowRoutes(api)

		// Payments before orders: the order service needs the payment
		// service as its initiator.
		r.setupPaymentRoutes(api)
		r.setupOrderRoutes(api)

		// Operator-only retry-queue inspection
		r.setupJobRoutes(api)
	}
}

// NewJobWorker builds the retry-queue worker with all handlers registered.
// Must be called after SetupRoutes. The caller decides whether to start it.
func (r *Router) NewJobWorker() *jobs.Worker {
	workerCfg := &jobs.WorkerConfig{
		PollInterval:    r.config.Worker.PollInterval,
		BaseRetryDelay:  r.config.Worker.BaseRetryDelay,
		MaxRetryDelay:   r.config.Worker.MaxRetryDelay,
		MaxExecutions:   r.config.Worker.MaxExecutions,
		ProcessingLease: r.config.Worker.ProcessingLease,
	}

	worker := jobs.NewWorker(r.jobsRepo, workerCfg)
	worker.Register(payments.NewPaymentCreationHandler(r.paymentService, r.ordersRepo, r.notifier))
	worker.Register(payments.NewOrphanedOrderCleanupHandler(r.paymentRepo, r.ordersRepo,
		r.showService, r.config.Worker.OrphanCutoff))
	worker.Schedule(jobs.TypeOrphanedOrderCleanup, orphanSweepInterval)

	return worker
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "showtix-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "showtix-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupShowRoutes configures the show catalog and availability routes
func (r *Router) setupShowRoutes(rg *gin.RouterGroup) {
	showRepo := shows.NewRepository(r.db.GetPostgreSQL())
	cacheService := cache.NewService(r.db.GetRedisClient())
	showService := shows.NewService(showRepo, cacheService, r.config.Redis.AvailabilityTTL)
	showController := shows.NewController(showService)
	showRouter := shows.NewRouter(showController)

	// Kept for payment and worker wiring
	r.showService = showService

	showRouter.SetupRoutes(rg)
}

// setupPaymentRoutes configures the webhook and payment lookup routes and
// builds the payment service the order routes depend on.
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())
	jobsRepo := jobs.NewRepository(r.db.GetPostgreSQL())
	ordersRepo := orders.NewRepository(r.db.GetPostgreSQL())
	ticketRepo := tickets.NewRepository(r.db.GetPostgreSQL())
	ticketService := tickets.NewService(ticketRepo)

	paymentService := payments.NewService(
		paymentRepo,
		r.paymentGateway(),
		jobsRepo,
		ordersRepo,
		ticketService,
		r.showService,
		r.notifier,
		payments.Config{
			Currency:    r.config.Payment.Currency,
			WebhookURL:  r.config.Payment.WebhookURL,
			RedirectURL: r.config.Payment.RedirectURL,
		},
	)
	paymentController := payments.NewController(paymentService)
	paymentRouter := payments.NewRouter(paymentController)

	r.paymentRepo = paymentRepo
	r.paymentService = paymentService
	r.ordersRepo = ordersRepo
	r.jobsRepo = jobsRepo

	paymentRouter.SetupRoutes(rg)
}

// setupOrderRoutes configures checkout and order lookup routes
func (r *Router) setupOrderRoutes(rg *gin.RouterGroup) {
	couponRepo := coupons.NewRepository(r.db.GetPostgreSQL())
	couponService := coupons.NewService(couponRepo)

	ticketRepo := tickets.NewRepository(r.db.GetPostgreSQL())
	ticketService := tickets.NewService(ticketRepo)

	orderService := orders.NewService(r.ordersRepo, r.showService, couponService,
		r.paymentService, ticketService)
	orderController := orders.NewController(orderService)
	orderRouter := orders.NewRouter(orderController)

	orderRouter.SetupRoutes(rg)
}

// setupJobRoutes configures the operator-only retry-queue inspection routes
func (r *Router) setupJobRoutes(rg *gin.RouterGroup) {
	jobService := jobs.NewService(r.jobsRepo)
	jobController := jobs.NewController(jobService)
	jobRouter := jobs.NewRouter(jobController)

	opsRoutes := rg.Group("")
	opsRoutes.Use(middleware.BearerAuth(r.config), middleware.RequireScope("ops"))

	jobRouter.SetupRoutes(opsRoutes)
}

// paymentGateway selects the provider integration from configuration. The
// mock gateway keeps local development and tests independent of the real
// provider.
func (r *Router) paymentGateway() payments.ProviderGateway {
	if r.config.Payment.Provider == "rest" {
		return payments.NewRESTGateway(r.config.Payment.BaseURL, r.config.Payment.APIKey,
			r.config.Payment.Timeout)
	}
	return payments.NewMockGateway(r.config.PublicBaseURL)
}

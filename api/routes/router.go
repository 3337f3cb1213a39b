package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "stayhub/docs"
	"stayhub/internal/analytics"
	"stayhub/internal/auth"
	"stayhub/internal/bookings"
	"stayhub/internal/hotels"
	"stayhub/internal/inventory"
	"stayhub/internal/notifications"
	"stayhub/internal/payments"
	"stayhub/internal/pricing"
	"stayhub/internal/shared/config"
	"stayhub/internal/shared/database"
	"stayhub/pkg/cache"
	"stayhub/pkg/logger"
)

// Router wires repositories, services and controllers and mounts all routes
type Router struct {
	config *config.Config
	db     *database.DB
	log    *logger.Logger

	authService      auth.Service
	hotelService     hotels.Service
	bookingService   bookings.Service
	paymentService   payments.Service
	analyticsService analytics.Service
}

// NewRouter builds the full dependency graph. The booking and payment
// services reference each other, so the payment service gets its lifecycle
// hook injected after both exist.
func NewRouter(cfg *config.Config, db *database.DB, log *logger.Logger, publisher notifications.Producer) *Router {
	pg := db.GetPostgreSQL()
	cacheService := cache.NewService(db.GetRedisClient())
	ledger := inventory.NewLedger(pg)
	calculator := pricing.NewCalculator(cfg.Booking.TaxRate)

	authService := auth.NewService(auth.NewRepository(pg), cfg)

	hotelRepo := hotels.NewRepository(pg)
	hotelService := hotels.NewService(hotelRepo, ledger, calculator, cacheService, cfg.Redis.SearchCacheTTL)

	paymentService := payments.NewService(payments.NewRepository(pg), log)
	bookingService := bookings.NewService(
		bookings.NewRepository(pg, ledger, log),
		hotelRepo, ledger, calculator,
		paymentService, cacheService, publisher, cfg, log,
	)
	paymentService.SetLifecycle(bookingService)

	analyticsService := analytics.NewService(analytics.NewRepository(pg), cacheService)

	return &Router{
		config:           cfg,
		db:               db,
		log:              log,
		authService:      authService,
		hotelService:     hotelService,
		bookingService:   bookingService,
		paymentService:   paymentService,
		analyticsService: analyticsService,
	}
}

// BookingService exposes the booking orchestrator for the background sweeper
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	if !r.config.IsProduction() {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := engine.Group(r.config.GetAPIBasePath())
	{
		auth.SetupAuthRoutes(api, auth.NewController(r.authService))
		hotels.SetupHotelRoutes(api, hotels.NewController(r.hotelService), r.config)
		bookings.SetupBookingRoutes(api, bookings.NewController(r.bookingService), r.config)
		payments.SetupPaymentRoutes(api, payments.NewController(r.paymentService), r.config)
		analytics.SetupAnalyticsRoutes(api, analytics.NewController(r.analyticsService), r.config)
	}
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "stayhub-backend",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "stayhub-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

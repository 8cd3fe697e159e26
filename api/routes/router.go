// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"kerya/internal/auth"
	"kerya/internal/bookings"
	"kerya/internal/listings"
	"kerya/internal/notifications"
	"kerya/internal/shared/config"
	"kerya/internal/shared/database"
	"kerya/internal/tickets"
	"kerya/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config         *config.Config
	db             *database.DB
	cacheService   cache.Service
	notifier       notifications.Service
	listingService listings.Service // shared by the booking and ticket groups
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB) *Router {
	return &Router{
		config: cfg,
		db:     db,
	}
}

// SetCacheService injects the read cache used for listing lookups.
func (r *Router) SetCacheService(cacheService cache.Service) {
	r.cacheService = cacheService
}

// SetNotificationService injects the Kafka-backed lifecycle notifier.
func (r *Router) SetNotificationService(notifier notifications.Service) {
	r.notifier = notifier
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)

		// Listing routes must come first so the shared listing service exists
		// before the booking and ticket groups are wired.
		r.setupListingRoutes(api)

		r.setupBookingRoutes(api)
		r.setupTicketRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "kerya-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "kerya-backend",
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

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController)

	authRouter.SetupRoutes(rg)
}

// setupListingRoutes configures listing management routes
func (r *Router) setupListingRoutes(rg *gin.RouterGroup) {
	listingRepo := listings.NewRepository(r.db.GetPostgreSQL())
	listingService := listings.NewService(listingRepo)

	if r.cacheService != nil {
		listingService.SetCacheService(r.cacheService)
	}

	// Keep the service around for the booking and ticket groups.
	r.listingService = listingService

	listingController := listings.NewController(listingService)
	listings.SetupListingRoutes(rg, listingController)
}

// setupBookingRoutes configures lodging booking routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	bookingService := bookings.NewService(bookingRepo, r.listingService)

	if r.notifier != nil {
		bookingService.SetNotifier(r.notifier)
	}

	bookingController := bookings.NewController(bookingService)
	bookings.SetupBookingRoutes(rg, bookingController)
}

// setupTicketRoutes configures ticket type, ticket order and scan routes
func (r *Router) setupTicketRoutes(rg *gin.RouterGroup) {
	ticketRepo := tickets.NewRepository(r.db.GetPostgreSQL())
	ticketService := tickets.NewService(ticketRepo, r.listingService)

	if r.notifier != nil {
		ticketService.SetNotifier(r.notifier)
	}

	ticketController := tickets.NewController(ticketService)
	tickets.SetupTicketRoutes(rg, ticketController)
}

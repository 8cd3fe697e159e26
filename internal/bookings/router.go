package bookings

import (
	"kerya/internal/shared/middleware"
	"kerya/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all lodging booking routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("", controller.CreateBooking)             // POST /api/v1/bookings
		bookings.GET("/:id", controller.GetBooking)             // GET /api/v1/bookings/:id
		bookings.POST("/:id/transition", controller.Transition) // POST /api/v1/bookings/:id/transition
		bookings.POST("/:id/cancel", controller.Cancel)         // POST /api/v1/bookings/:id/cancel
	}

	userRoutes := rg.Group("/users")
	userRoutes.Use(middleware.JWTAuth())
	{
		userRoutes.GET("/bookings", controller.GetMyBookings) // GET /api/v1/users/bookings
	}

	listingRoutes := rg.Group("/listings")
	listingRoutes.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleHost), string(users.RoleAdmin)))
	{
		listingRoutes.GET("/:id/bookings", controller.GetListingBookings) // GET /api/v1/listings/:id/bookings
	}
}

package tickets

import (
	"kerya/internal/shared/middleware"
	"kerya/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupTicketRoutes configures ticket type, event booking and scanning routes
func SetupTicketRoutes(rg *gin.RouterGroup, controller *Controller) {
	ticketTypes := rg.Group("/ticket-types")
	{
		ticketTypes.GET("", controller.ListTicketTypes)   // GET /api/v1/ticket-types
		ticketTypes.GET("/:id", controller.GetTicketType) // GET /api/v1/ticket-types/:id

		managed := ticketTypes.Group("")
		managed.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleHost), string(users.RoleAdmin)))
		{
			managed.POST("", controller.CreateTicketType)       // POST /api/v1/ticket-types
			managed.PATCH("/:id", controller.UpdateTicketType)  // PATCH /api/v1/ticket-types/:id
			managed.DELETE("/:id", controller.DeleteTicketType) // DELETE /api/v1/ticket-types/:id
		}
	}

	eventBookings := rg.Group("/event-bookings")
	eventBookings.Use(middleware.JWTAuth())
	{
		eventBookings.POST("", controller.CreateBooking)                             // POST /api/v1/event-bookings
		eventBookings.GET("/:id", controller.GetBooking)                             // GET /api/v1/event-bookings/:id
		eventBookings.GET("/reference/:reference", controller.GetBookingByReference) // GET /api/v1/event-bookings/reference/:reference
		eventBookings.POST("/:id/confirm", controller.ConfirmBooking)                // POST /api/v1/event-bookings/:id/confirm
		eventBookings.POST("/:id/cancel", controller.CancelBooking)                  // POST /api/v1/event-bookings/:id/cancel
	}

	userRoutes := rg.Group("/users")
	userRoutes.Use(middleware.JWTAuth())
	{
		userRoutes.GET("/event-bookings", controller.GetMyBookings) // GET /api/v1/users/event-bookings
	}

	eventRoutes := rg.Group("/events")
	eventRoutes.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleHost), string(users.RoleAdmin)))
	{
		eventRoutes.GET("/:id/bookings", controller.GetEventBookings) // GET /api/v1/events/:id/bookings
	}

	scanning := rg.Group("/tickets")
	scanning.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleHost), string(users.RoleAdmin)))
	{
		scanning.POST("/use", controller.UseTicket) // POST /api/v1/tickets/use
	}
}

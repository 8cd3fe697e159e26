package listings

import (
	"kerya/internal/shared/middleware"
	"kerya/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupListingRoutes configures all listing routes
func SetupListingRoutes(rg *gin.RouterGroup, controller *Controller) {
	listings := rg.Group("/listings")
	{
		// Public browsing
		listings.GET("", controller.GetListings)    // GET /api/v1/listings
		listings.GET("/:id", controller.GetListing) // GET /api/v1/listings/:id

		managed := listings.Group("")
		managed.Use(middleware.JWTAuth(), middleware.RequireRoles(string(users.RoleHost), string(users.RoleAdmin)))
		{
			managed.POST("", controller.CreateListing)       // POST /api/v1/listings
			managed.PATCH("/:id", controller.UpdateListing)  // PATCH /api/v1/listings/:id
			managed.DELETE("/:id", controller.DeleteListing) // DELETE /api/v1/listings/:id
		}
	}
}

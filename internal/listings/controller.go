package listings

import (
	"net/http"

	"kerya/internal/shared/middleware"
	"kerya/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateListing handles POST /api/v1/listings
func (c *Controller) CreateListing(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateListingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	listing, err := c.service.CreateListing(ctx.Request.Context(), actor, req)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Listing created successfully", listing, nil)
}

// GetListing handles GET /api/v1/listings/:id
func (c *Controller) GetListing(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid listing ID", nil, nil)
		return
	}

	listing, err := c.service.GetListingByID(ctx.Request.Context(), id)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Listing retrieved successfully", listing, nil)
}

// UpdateListing handles PATCH /api/v1/listings/:id
func (c *Controller) UpdateListing(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid listing ID", nil, nil)
		return
	}

	var req UpdateListingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	listing, err := c.service.UpdateListing(ctx.Request.Context(), actor, id, req)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Listing updated successfully", listing, nil)
}

// DeleteListing handles DELETE /api/v1/listings/:id
func (c *Controller) DeleteListing(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid listing ID", nil, nil)
		return
	}

	if err := c.service.DeleteListing(ctx.Request.Context(), actor, id); err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Listing deleted successfully", nil, nil)
}

// GetListings handles GET /api/v1/listings
func (c *Controller) GetListings(ctx *gin.Context) {
	var query ListingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	listings, total, err := c.service.GetListings(ctx.Request.Context(), query)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Listings retrieved successfully", gin.H{
		"listings": listings,
		"total":    total,
	}, nil)
}

package bookings

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

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), actor, req)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created successfully", booking, nil)
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), actor, bookingID)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// Transition handles POST /api/v1/bookings/:id/transition
func (c *Controller) Transition(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	var req TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.ApplyTransition(ctx.Request.Context(), actor, bookingID, Transition(req.Transition))
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking updated successfully", booking, nil)
}

// Cancel handles POST /api/v1/bookings/:id/cancel
func (c *Controller) Cancel(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.Cancel(ctx.Request.Context(), actor, bookingID)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled successfully", booking, nil)
}

// GetMyBookings handles GET /api/v1/users/bookings
func (c *Controller) GetMyBookings(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	bookings, total, err := c.service.GetMyBookings(ctx.Request.Context(), actor, query)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", gin.H{
		"bookings": bookings,
		"pagination": gin.H{
			"page":        query.Page,
			"limit":       query.Limit,
			"total":       total,
			"total_pages": CalculateTotalPages(total, query.Limit),
		},
	}, nil)
}

// GetListingBookings handles GET /api/v1/listings/:id/bookings
func (c *Controller) GetListingBookings(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	listingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid listing ID", nil, nil)
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	bookings, total, err := c.service.GetListingBookings(ctx.Request.Context(), actor, listingID, query)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", gin.H{
		"bookings": bookings,
		"pagination": gin.H{
			"page":        query.Page,
			"limit":       query.Limit,
			"total":       total,
			"total_pages": CalculateTotalPages(total, query.Limit),
		},
	}, nil)
}

package tickets

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

// CreateTicketType handles POST /api/v1/ticket-types
func (c *Controller) CreateTicketType(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateTicketTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ticketType, err := c.service.CreateTicketType(ctx.Request.Context(), actor, req)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Ticket type created successfully", ticketType, nil)
}

// UpdateTicketType handles PATCH /api/v1/ticket-types/:id
func (c *Controller) UpdateTicketType(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticket type ID", nil, nil)
		return
	}

	var req UpdateTicketTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ticketType, err := c.service.UpdateTicketType(ctx.Request.Context(), actor, id, req)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket type updated successfully", ticketType, nil)
}

// GetTicketType handles GET /api/v1/ticket-types/:id
func (c *Controller) GetTicketType(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticket type ID", nil, nil)
		return
	}

	ticketType, err := c.service.GetTicketType(ctx.Request.Context(), id)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket type retrieved successfully", ticketType, nil)
}

// ListTicketTypes handles GET /api/v1/ticket-types
func (c *Controller) ListTicketTypes(ctx *gin.Context) {
	var query TicketTypeListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	types, err := c.service.ListTicketTypes(ctx.Request.Context(), query)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket types retrieved successfully", types, nil)
}

// DeleteTicketType handles DELETE /api/v1/ticket-types/:id
func (c *Controller) DeleteTicketType(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid ticket type ID", nil, nil)
		return
	}

	if err := c.service.DeleteTicketType(ctx.Request.Context(), actor, id); err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket type deleted successfully", nil, nil)
}

// CreateBooking handles POST /api/v1/event-bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateEventBookingRequest
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

// GetBooking handles GET /api/v1/event-bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), actor, id)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// GetBookingByReference handles GET /api/v1/event-bookings/reference/:reference
func (c *Controller) GetBookingByReference(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	booking, err := c.service.GetBookingByReference(ctx.Request.Context(), actor, ctx.Param("reference"))
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// ConfirmBooking handles POST /api/v1/event-bookings/:id/confirm
func (c *Controller) ConfirmBooking(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	var req ConfirmBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.ConfirmBooking(ctx.Request.Context(), actor, id, req)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking confirmed successfully", booking, nil)
}

// CancelBooking handles POST /api/v1/event-bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.CancelBooking(ctx.Request.Context(), actor, id)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled successfully", booking, nil)
}

// GetMyBookings handles GET /api/v1/users/event-bookings
func (c *Controller) GetMyBookings(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var query EventBookingListQuery
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
		"total":    total,
	}, nil)
}

// GetEventBookings handles GET /api/v1/events/:id/bookings
func (c *Controller) GetEventBookings(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid event ID", nil, nil)
		return
	}

	var query EventBookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	bookings, total, err := c.service.GetEventBookings(ctx.Request.Context(), actor, eventID, query)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", gin.H{
		"bookings": bookings,
		"total":    total,
	}, nil)
}

// UseTicket handles POST /api/v1/tickets/use
func (c *Controller) UseTicket(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req UseTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ticket, err := c.service.UseTicket(ctx.Request.Context(), actor, req.Code)
	if err != nil {
		response.RespondAppError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket used successfully", ticket, nil)
}

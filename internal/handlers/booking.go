package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/giglink/backend/internal/middleware"
	"github.com/giglink/backend/internal/services"
	"github.com/giglink/backend/pkg/response"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(db *gorm.DB, notifier *services.NotificationService) *BookingHandler {
	return &BookingHandler{
		bookingService: services.NewBookingService(db, notifier),
	}
}

func bookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return 0, false
	}
	return uint(id), true
}

// Create submits a booking request
// POST /api/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "booking request sent", booking)
}

// List returns the caller's bookings
// GET /api/bookings
func (h *BookingHandler) List(c *gin.Context) {
	var req services.BookingListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.bookingService.List(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "ok", resp)
}

// Get returns one booking visible to the caller
// GET /api/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetByID(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "ok", booking)
}

// Accept confirms a pending booking
// POST /api/bookings/:id/accept
func (h *BookingHandler) Accept(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	// The body is optional: accepting without one keeps the offered rate.
	var req services.AcceptBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	booking, err := h.bookingService.Accept(middleware.GetUserID(c), id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "booking accepted", booking)
}

// Reject declines a pending booking
// POST /api/bookings/:id/reject
func (h *BookingHandler) Reject(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.Reject(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "booking rejected", booking)
}

// Cancel withdraws a pending or accepted booking
// POST /api/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.Cancel(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "booking cancelled", booking)
}

// Complete marks an accepted booking as done
// POST /api/bookings/:id/complete
func (h *BookingHandler) Complete(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.Complete(middleware.GetUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "booking completed", booking)
}

package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/giglink/backend/internal/config"
	"github.com/giglink/backend/internal/middleware"
	"github.com/giglink/backend/internal/services"
	"github.com/giglink/backend/pkg/response"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(db *gorm.DB, gateway services.PaymentGateway, notifier *services.NotificationService, email *services.EmailService, cfg *config.PaystackConfig) *PaymentHandler {
	return &PaymentHandler{
		paymentService: services.NewPaymentService(db, gateway, notifier, email, cfg),
	}
}

// InitiateAdHoc starts a standalone payment
// POST /api/payments/initiate
func (h *PaymentHandler) InitiateAdHoc(c *gin.Context) {
	var req services.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.InitiateAdHoc(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "payment initiated", result)
}

// InitiateBooking starts the payment for an accepted booking
// POST /api/bookings/:id/pay
func (h *PaymentHandler) InitiateBooking(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}

	result, err := h.paymentService.InitiateBooking(c.Request.Context(), middleware.GetUserID(c), uint(id))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "payment initiated", result)
}

// InitiateSubscription starts a subscription payment
// POST /api/subscriptions/pay
func (h *PaymentHandler) InitiateSubscription(c *gin.Context) {
	var req services.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.InitiateSubscription(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "payment initiated", result)
}

// Verify reconciles a payment against the gateway. This is the endpoint
// the gateway callback redirects to, so it is reachable without auth.
// GET /api/payments/verify/:reference
func (h *PaymentHandler) Verify(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		response.BadRequest(c, "missing payment reference")
		return
	}

	payment, err := h.paymentService.Verify(c.Request.Context(), reference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "payment verified", payment)
}

// History returns the caller's payments
// GET /api/payments
func (h *PaymentHandler) History(c *gin.Context) {
	var req services.PaymentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.paymentService.History(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "ok", resp)
}

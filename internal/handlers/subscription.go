package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/giglink/backend/internal/middleware"
	"github.com/giglink/backend/internal/services"
	"github.com/giglink/backend/pkg/response"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(db *gorm.DB) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: services.NewSubscriptionService(db),
	}
}

// Create starts a subscription for the caller's profile
// POST /api/subscriptions
func (h *SubscriptionHandler) Create(c *gin.Context) {
	var req services.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sub, err := h.subscriptionService.Create(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "subscription started", sub)
}

// Renew extends the caller's subscription window
// POST /api/subscriptions/renew
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	var req services.RenewSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sub, err := h.subscriptionService.Renew(middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "subscription renewed", sub)
}

// Cancel turns off renewal; the current window keeps running
// POST /api/subscriptions/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	sub, err := h.subscriptionService.Cancel(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "subscription cancelled", sub)
}

// Status returns the caller's subscription, expiring it lazily
// GET /api/subscriptions/me
func (h *SubscriptionHandler) Status(c *gin.Context) {
	sub, err := h.subscriptionService.Status(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, "ok", sub)
}

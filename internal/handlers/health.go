package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/internal/services"
)

// HealthHandler reports subsystem status for probes and dashboards.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
// GET /api/health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	queue := services.GetDispatchQueue()
	queueMode := "sync"
	if queue != nil && queue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var pendingPayments int64
	models.GetDB().Model(&models.Payment{}).
		Where("status = ?", models.PaymentPending).
		Count(&pendingPayments)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "giglink",
		"components": gin.H{
			"database":         dbStatus,
			"queue_mode":       queueMode,
			"pending_payments": pendingPayments,
		},
	})
}

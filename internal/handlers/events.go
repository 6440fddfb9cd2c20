package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/giglink/backend/internal/services"
	"github.com/giglink/backend/internal/utils"
	"github.com/giglink/backend/pkg/logger"
	"github.com/giglink/backend/pkg/response"
)

// EventsHandler streams a user's notification events over SSE.
type EventsHandler struct {
	hub *services.Hub
}

func NewEventsHandler() *EventsHandler {
	return &EventsHandler{hub: services.GetHub()}
}

// Stream handles the SSE connection for the authenticated user
// GET /api/events/notifications?token=...
func (h *EventsHandler) Stream(c *gin.Context) {
	// EventSource cannot set headers, so the token may arrive as a query
	// parameter instead.
	token := c.Query("token")
	if token == "" {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	if token == "" {
		response.Unauthorized(c, "missing token")
		return
	}

	claims, err := utils.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, "invalid token")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	sessionID := uuid.New().String()

	events := h.hub.Subscribe(claims.UserID, sessionID)
	defer h.hub.Unsubscribe(claims.UserID, sessionID)

	logger.Info().Uint("user_id", claims.UserID).Str("session_id", sessionID).
		Int("sessions", h.hub.SessionCount(claims.UserID)).Msg("SSE session connected")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			data, err := json.Marshal(event)
			if err != nil {
				logger.Error().Err(err).Msg("SSE marshal error")
				return true
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			c.Writer.Flush()
			return true
		case <-c.Request.Context().Done():
			logger.Info().Uint("user_id", claims.UserID).Str("session_id", sessionID).Msg("SSE session disconnected")
			return false
		}
	})
}

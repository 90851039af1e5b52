package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oghenetejiriorukpegmail/careerAI-sub002/internal/api/dto"
)

// ListNotifications handles GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := CallerID(c)

	var req dto.ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid query parameters",
		})
		return
	}

	if req.Limit <= 0 {
		req.Limit = 20
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	notifications, err := h.notifications.ListByUser(c.Request.Context(), userID, req.UnreadOnly, req.Limit)
	if err != nil {
		h.logger.Error("Failed to list notifications", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list notifications",
		})
		return
	}

	resp := dto.ListNotificationsResponse{
		Notifications: make([]dto.NotificationResponse, len(notifications)),
	}
	for i, n := range notifications {
		resp.Notifications[i] = dto.NotificationResponse{
			NotificationID: n.ID,
			Title:          n.Title,
			Message:        n.Message,
			Type:           string(n.Type),
			Read:           n.Read,
			Metadata:       n.Metadata,
			CreatedAt:      n.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, resp)
}

// MarkNotificationsRead handles POST /api/v1/notifications/read
func (h *NotificationHandler) MarkNotificationsRead(c *gin.Context) {
	userID := CallerID(c)

	var req dto.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	updated, err := h.notifications.MarkRead(c.Request.Context(), userID, req.NotificationIDs)
	if err != nil {
		h.logger.Error("Failed to mark notifications read", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to mark notifications read",
		})
		return
	}

	c.JSON(http.StatusOK, dto.MarkReadResponse{Updated: updated})
}

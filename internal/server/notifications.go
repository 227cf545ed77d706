package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/visionmakers/backend/internal/notification"
	"go.uber.org/zap"
)

func (h *httpHandler) handleListNotifications(c *gin.Context) {
	limit := parseQueryInt(c, "limit", 50)
	unreadOnly := c.Query("unread_only") == "true"

	records, unread, err := h.notifications.FetchNotifications(c.Request.Context(), limit, unreadOnly)
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	if records == nil {
		records = []notification.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": records, "unreadCount": unread})
}

// Mark-read goes through the reconciler so local state updates immediately
// and persistence happens in the background. The response reflects the
// optimistic state; a persistence failure surfaces only in the logs.
func (h *httpHandler) handleMarkNotificationRead(c *gin.Context) {
	notificationID := c.Param("id")
	if notificationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	h.reconciler.MarkRead(context.WithoutCancel(c.Request.Context()), notificationID)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "unreadCount": h.reconciler.UnreadCount()})
}

func (h *httpHandler) handleMarkAllNotificationsRead(c *gin.Context) {
	h.reconciler.MarkAllRead(context.WithoutCancel(c.Request.Context()))
	c.JSON(http.StatusOK, gin.H{"status": "ok", "unreadCount": 0})
}

package server

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/visionmakers/backend/internal/notification"
)

const (
	streamEventNotification = "notification"
	streamEventHeartbeat    = "heartbeat"
	streamBufferSize        = 16
	streamHeartbeatInterval = 25 * time.Second
)

// handleNotificationStream bridges the reconciler's delivery callbacks onto
// a server-sent events response. Each connection gets its own buffered
// channel; a client that stops draining silently loses events rather than
// blocking ingestion.
func (h *httpHandler) handleNotificationStream(c *gin.Context) {
	adminID := c.GetString(adminIDContextKey)
	subscriberID := fmt.Sprintf("sse-%s-%d", adminID, time.Now().UnixNano())

	events := make(chan notification.Record, streamBufferSize)
	h.reconciler.Subscribe(subscriberID, func(record notification.Record) {
		select {
		case events <- record:
		default:
		}
	})
	defer h.reconciler.Unsubscribe(subscriberID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	// Flush the headers so clients see the stream open before the first event.
	c.Writer.Flush()

	heartbeat := time.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case record := <-events:
			c.SSEvent(streamEventNotification, record)
			return true
		case <-heartbeat.C:
			c.SSEvent(streamEventHeartbeat, gin.H{"unreadCount": h.reconciler.UnreadCount()})
			return true
		}
	})
}

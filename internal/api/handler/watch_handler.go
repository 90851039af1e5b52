package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser clients connect from the SPA origin; auth happens in the
	// middleware before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WatchJobs handles GET /api/v1/jobs/watch
// Upgrades to a WebSocket and streams snapshots of the caller's
// non-terminal jobs. The watcher polls fast only while active jobs exist,
// so an idle connection costs one indexed query per heartbeat.
func (h *JobHandler) WatchJobs(c *gin.Context) {
	userID := CallerID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Drain client frames so close/ping handling works; any read error
	// ends the subscription.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snapshots := h.watcher.Watch(ctx, userID)

	for snapshot := range snapshots {
		if err := conn.WriteJSON(snapshot); err != nil {
			h.logger.Debug("WebSocket write failed, closing",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/kiosk-backend/internal/platform/logger"
	"github.com/yungbote/kiosk-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// SSEStream subscribes a display to content-change events until it
// disconnects. GET /api/playback/stream?device=lobby-1
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	client := h.hub.NewSSEClient(c.Query("device"))
	h.hub.AddChannel(client, realtime.ChannelKiosk)
	h.log.Info("SSE stream open", "client_id", client.ID, "device", client.Label)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Info("SSE stream closed", "client_id", client.ID)
}

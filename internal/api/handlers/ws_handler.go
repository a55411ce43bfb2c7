package handlers

import (
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/replydesk/replydesk-backend/internal/events"
)

// WSHandler upgrades connections and attaches clients to the events hub
type WSHandler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *events.Hub, upgrader websocket.Upgrader, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger,
	}
}

// Serve handles GET /ws
func (h *WSHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		}
		return nil
	}

	client := events.NewClient(h.hub, conn, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	return nil
}

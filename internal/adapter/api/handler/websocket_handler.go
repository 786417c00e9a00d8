package handler

import (
	"net/http"
	"strings"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/middleware"
	ws "roadrescue/internal/infrastructure/websocket"
	"roadrescue/pkg/errors"
	"roadrescue/pkg/logger"
)

// WebSocketHandler upgrades authenticated clients and hands them to the hub,
// which then pushes request and chat events to them.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader gorillaws.Upgrader
}

// NewWebSocketHandler accepts connections from allowedOrigin, or from any
// origin when it is empty or "*".
func NewWebSocketHandler(hub *ws.Hub, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return strings.EqualFold(r.Header.Get("Origin"), allowedOrigin)
			},
		},
	}
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	p := middleware.PrincipalFrom(c)
	if p == nil || p.UserID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logger.Warn("websocket upgrade failed for %s: %v", p.UserID, err)
		return nil
	}

	client := ws.NewClient(p.UserID, conn)
	h.hub.Register(client)

	go client.ReadPump(h.hub)
	go client.WritePump()

	return nil
}

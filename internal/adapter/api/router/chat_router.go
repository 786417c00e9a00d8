package router

import (
	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/handler"
	"roadrescue/internal/adapter/api/middleware"
)

// SetupChatRouter only requires a token; room membership is checked per request.
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chat := e.Group("/chat")
	chat.Use(authMiddleware.Authenticate)

	chat.GET("/rooms", chatHandler.Rooms)
	chat.GET("/rooms/:requestId/messages", chatHandler.Messages)
	chat.POST("/rooms/:requestId/messages", chatHandler.Send)
}

package router

import (
	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/handler"
	"roadrescue/internal/adapter/api/middleware"
)

func SetupAuthRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware *middleware.AuthMiddleware) {
	auth := e.Group("/auth")

	// Public routes
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate)
	auth.POST("/logout", authHandler.Logout, authMiddleware.Authenticate)
}

package router

import (
	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/handler"
	"roadrescue/internal/adapter/api/middleware"
	"roadrescue/internal/domain/entity"
)

func SetupRequestRouter(e *echo.Echo, requestHandler *handler.RequestHandler, authMiddleware *middleware.AuthMiddleware) {
	requests := e.Group("/requests")
	requests.Use(authMiddleware.Authenticate)
	requests.Use(middleware.RequireRoles(entity.RoleCustomer))

	requests.POST("", requestHandler.Create)
	requests.GET("/my", requestHandler.ListMine)
	requests.GET("/:id", requestHandler.Get)
	requests.POST("/:id/confirm", requestHandler.Confirm)
	requests.POST("/:id/cancel", requestHandler.Cancel)
}

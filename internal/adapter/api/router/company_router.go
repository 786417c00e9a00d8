package router

import (
	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/handler"
	"roadrescue/internal/adapter/api/middleware"
	"roadrescue/internal/domain/entity"
)

func SetupCompanyRouter(
	e *echo.Echo,
	companyHandler *handler.CompanyHandler,
	companyRequestHandler *handler.CompanyRequestHandler,
	authMiddleware *middleware.AuthMiddleware,
	companyMiddleware *middleware.CompanyMiddleware,
) {
	company := e.Group("/company")
	company.Use(authMiddleware.Authenticate)
	company.Use(middleware.RequireRoles(entity.RoleCompany))

	// A company fills in its profile while it waits for approval.
	company.GET("/profile", companyHandler.GetProfile)
	company.PUT("/profile", companyHandler.UpdateProfile)

	requests := company.Group("/requests")
	requests.Use(companyMiddleware.RequireActive)

	requests.GET("", companyRequestHandler.List)
	requests.GET("/history", companyRequestHandler.History)
	requests.GET("/:id", companyRequestHandler.Get)
	requests.PATCH("/:id/eta", companyRequestHandler.UpdateETA)
	requests.PATCH("/:id/status", companyRequestHandler.UpdateStatus)
}

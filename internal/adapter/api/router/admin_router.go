package router

import (
	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/handler"
	"roadrescue/internal/adapter/api/middleware"
	"roadrescue/internal/domain/entity"
)

func SetupAdminRouter(
	e *echo.Echo,
	adminHandler *handler.AdminHandler,
	communityHandler *handler.CommunityHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	admin := e.Group("/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(middleware.RequireRoles(entity.RoleAdmin))

	// Company onboarding
	admin.GET("/companies", adminHandler.ListCompanies)
	admin.PATCH("/companies/:id/status", adminHandler.UpdateCompanyStatus)

	// Community moderation
	admin.GET("/community-tips", communityHandler.AdminListTips)
	admin.PATCH("/community-tips/:id", communityHandler.UpdateTip)
	admin.DELETE("/community-tips/:id", communityHandler.DeleteTip)
	admin.PATCH("/community-topics/:id/feature", communityHandler.FeatureTopic)

	admin.GET("/reports/overview", adminHandler.ReportOverview)
}

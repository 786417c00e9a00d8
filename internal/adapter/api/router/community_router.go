package router

import (
	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/handler"
	"roadrescue/internal/adapter/api/middleware"
	"roadrescue/internal/domain/entity"
)

func SetupCommunityRouter(e *echo.Echo, communityHandler *handler.CommunityHandler, authMiddleware *middleware.AuthMiddleware) {
	community := e.Group("/community")

	// Public routes
	community.GET("/topics", communityHandler.ListTopics)
	community.GET("/topics/:id", communityHandler.GetTopic)
	community.GET("/tips", communityHandler.ListTips)

	// Protected routes
	community.POST("/topics", communityHandler.CreateTopic, authMiddleware.Authenticate)
	community.POST("/topics/:id/upvote", communityHandler.UpvoteTopic, authMiddleware.Authenticate)
	community.POST("/tips", communityHandler.CreateTip,
		authMiddleware.Authenticate, middleware.RequireRoles(entity.RoleCustomer))
}

package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/handler"
	"roadrescue/internal/adapter/api/middleware"
)

// Handlers bundles everything the routes dispatch to. main builds it once.
type Handlers struct {
	Auth           *handler.AuthHandler
	Category       *handler.CategoryHandler
	Company        *handler.CompanyHandler
	Request        *handler.RequestHandler
	CompanyRequest *handler.CompanyRequestHandler
	Chat           *handler.ChatHandler
	Community      *handler.CommunityHandler
	Admin          *handler.AdminHandler
	Health         *handler.HealthHandler
	WebSocket      *handler.WebSocketHandler
}

func Setup(
	e *echo.Echo,
	h Handlers,
	authMiddleware *middleware.AuthMiddleware,
	companyMiddleware *middleware.CompanyMiddleware,
	metricsHandler http.Handler,
) {
	SetupAuthRouter(e, h.Auth, authMiddleware)
	SetupCatalogRouter(e, h.Category, h.Company)
	SetupRequestRouter(e, h.Request, authMiddleware)
	SetupCompanyRouter(e, h.Company, h.CompanyRequest, authMiddleware, companyMiddleware)
	SetupAdminRouter(e, h.Admin, h.Community, authMiddleware)
	SetupChatRouter(e, h.Chat, authMiddleware)
	SetupCommunityRouter(e, h.Community, authMiddleware)
	SetupHealthRouter(e, h.Health, metricsHandler)
	if h.WebSocket != nil {
		SetupWebSocketRouter(e, h.WebSocket, authMiddleware)
	}
}

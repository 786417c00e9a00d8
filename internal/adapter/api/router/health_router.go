package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/handler"
)

func SetupHealthRouter(e *echo.Echo, healthHandler *handler.HealthHandler, metricsHandler http.Handler) {
	e.GET("/health", healthHandler.CheckHealth)
	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}
}

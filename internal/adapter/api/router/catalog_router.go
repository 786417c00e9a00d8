package router

import (
	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/handler"
)

// SetupCatalogRouter registers the public lookups used while building a request.
func SetupCatalogRouter(e *echo.Echo, categoryHandler *handler.CategoryHandler, companyHandler *handler.CompanyHandler) {
	e.GET("/categories", categoryHandler.List)
	e.GET("/companies/suggest", companyHandler.Suggest)
}

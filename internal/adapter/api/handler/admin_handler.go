package handler

import (
	"github.com/labstack/echo/v4"

	"roadrescue/internal/usecase"
	"roadrescue/pkg/response"
)

// AdminHandler covers company moderation and reporting. Community
// moderation lives on CommunityHandler.
type AdminHandler struct {
	adminUseCase  *usecase.AdminUseCase
	reportUseCase *usecase.ReportUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase, reportUseCase *usecase.ReportUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase:  adminUseCase,
		reportUseCase: reportUseCase,
	}
}

type companyStatusRequest struct {
	CompanyStatus string `json:"companyStatus"`
}

// ListCompanies handles GET /admin/companies?status= (default PENDING).
func (h *AdminHandler) ListCompanies(c echo.Context) error {
	status, companies, err := h.adminUseCase.ListCompanies(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return response.Error(c, err)
	}

	items := make([]userResponse, 0, len(companies))
	for _, u := range companies {
		items = append(items, newUserResponse(u))
	}
	return response.Success(c, statusListResponse{Status: string(status), Count: len(items), Items: items})
}

func (h *AdminHandler) UpdateCompanyStatus(c echo.Context) error {
	var req companyStatusRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.adminUseCase.UpdateCompanyStatus(c.Request().Context(), c.Param("id"), req.CompanyStatus)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, newUserResponse(user))
}

// ReportOverview handles GET /admin/reports/overview?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *AdminHandler) ReportOverview(c echo.Context) error {
	report, err := h.reportUseCase.Overview(c.Request().Context(), c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, report)
}

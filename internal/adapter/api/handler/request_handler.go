package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/middleware"
	"roadrescue/internal/domain/entity"
	"roadrescue/internal/usecase"
	"roadrescue/pkg/response"
	"roadrescue/pkg/utils"
)

// RequestHandler serves the customer side of rescue requests.
type RequestHandler struct {
	requestUseCase *usecase.RequestUseCase
}

func NewRequestHandler(requestUseCase *usecase.RequestUseCase) *RequestHandler {
	return &RequestHandler{
		requestUseCase: requestUseCase,
	}
}

type createRequestRequest struct {
	CategoryID   string   `json:"categoryId"`
	CompanyID    string   `json:"companyId"`
	IssueType    string   `json:"issueType" validate:"max=200"`
	Note         string   `json:"note" validate:"max=1000"`
	ContactName  string   `json:"contactName" validate:"max=100"`
	ContactPhone string   `json:"contactPhone" validate:"max=30"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	AddressText  string   `json:"addressText" validate:"max=300"`
}

type confirmRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review" validate:"max=1000"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type confirmResponse struct {
	ID                  string               `json:"id"`
	Status              entity.RequestStatus `json:"status"`
	CustomerRating      *int                 `json:"customerRating"`
	CustomerReview      *string              `json:"customerReview"`
	CustomerConfirmedAt *time.Time           `json:"customerConfirmedAt"`
}

type cancelResponse struct {
	ID           string               `json:"id"`
	Status       entity.RequestStatus `json:"status"`
	CancelReason string               `json:"cancelReason"`
	CancelledAt  *time.Time           `json:"cancelledAt"`
}

func (h *RequestHandler) Create(c echo.Context) error {
	var req createRequestRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	created, err := h.requestUseCase.Create(c.Request().Context(), usecase.CreateRequestInput{
		CustomerID:   middleware.PrincipalFrom(c).UserID,
		CategoryID:   req.CategoryID,
		CompanyID:    req.CompanyID,
		IssueType:    req.IssueType,
		Note:         req.Note,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Lat:          req.Lat,
		Lng:          req.Lng,
		AddressText:  req.AddressText,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, newRequestResponse(created))
}

// ListMine handles GET /requests/my?status=
func (h *RequestHandler) ListMine(c echo.Context) error {
	items, err := h.requestUseCase.ListMine(c.Request().Context(), middleware.PrincipalFrom(c).UserID, c.QueryParam("status"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, newRequestResponses(items), len(items))
}

func (h *RequestHandler) Get(c echo.Context) error {
	detail, err := h.requestUseCase.GetMine(c.Request().Context(), middleware.PrincipalFrom(c).UserID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	out := newRequestResponse(detail.Request)
	withCategory(&out, detail.Category, detail.Request.CategoryID)
	withCompany(&out, detail.Company, detail.Request.AssignedCompanyID)
	return response.Success(c, out)
}

func (h *RequestHandler) Confirm(c echo.Context) error {
	var req confirmRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	updated, err := h.requestUseCase.Confirm(c.Request().Context(), middleware.PrincipalFrom(c).UserID, c.Param("id"), req.Rating, req.Review)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, confirmResponse{
		ID:                  updated.ID,
		Status:              updated.Status,
		CustomerRating:      updated.CustomerRating,
		CustomerReview:      optional(updated.CustomerReview),
		CustomerConfirmedAt: updated.CustomerConfirmedAt,
	})
}

func (h *RequestHandler) Cancel(c echo.Context) error {
	var req cancelRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	updated, err := h.requestUseCase.Cancel(c.Request().Context(), middleware.PrincipalFrom(c).UserID, c.Param("id"), req.Reason)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, cancelResponse{
		ID:           updated.ID,
		Status:       updated.Status,
		CancelReason: updated.CancelReason,
		CancelledAt:  updated.CancelledAt,
	})
}

// CompanyRequestHandler serves the requests assigned to the calling company.
type CompanyRequestHandler struct {
	companyRequestUseCase *usecase.CompanyRequestUseCase
}

func NewCompanyRequestHandler(companyRequestUseCase *usecase.CompanyRequestUseCase) *CompanyRequestHandler {
	return &CompanyRequestHandler{
		companyRequestUseCase: companyRequestUseCase,
	}
}

type etaRequest struct {
	EtaMinutes *int `json:"etaMinutes" validate:"omitempty,max=1440"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type etaResponse struct {
	ID         string               `json:"id"`
	Status     entity.RequestStatus `json:"status"`
	EtaMinutes *int                 `json:"etaMinutes"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

type statusResponse struct {
	ID          string               `json:"id"`
	Status      entity.RequestStatus `json:"status"`
	CompletedAt *time.Time           `json:"completedAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// List handles GET /company/requests?status= (default PENDING).
func (h *CompanyRequestHandler) List(c echo.Context) error {
	status, items, err := h.companyRequestUseCase.List(c.Request().Context(), middleware.PrincipalFrom(c).UserID, c.QueryParam("status"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, statusListResponse{Status: string(status), Count: len(items), Items: newRequestResponses(items)})
}

// History handles GET /company/requests/history?status=&limit= (default COMPLETED).
func (h *CompanyRequestHandler) History(c echo.Context) error {
	limit := utils.QueryInt(c, "limit", usecase.DefaultHistoryLimit)
	status, items, err := h.companyRequestUseCase.History(c.Request().Context(), middleware.PrincipalFrom(c).UserID, c.QueryParam("status"), limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, statusListResponse{Status: string(status), Count: len(items), Items: newRequestResponses(items)})
}

func (h *CompanyRequestHandler) Get(c echo.Context) error {
	detail, err := h.companyRequestUseCase.Detail(c.Request().Context(), middleware.PrincipalFrom(c).UserID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	out := newRequestResponse(detail.Request)
	withCategory(&out, detail.Category, detail.Request.CategoryID)
	withCustomer(&out, detail.Customer, detail.Request.CustomerID)
	return response.Success(c, out)
}

func (h *CompanyRequestHandler) UpdateETA(c echo.Context) error {
	var req etaRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	updated, err := h.companyRequestUseCase.UpdateETA(c.Request().Context(), middleware.PrincipalFrom(c).UserID, c.Param("id"), req.EtaMinutes)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, etaResponse{
		ID:         updated.ID,
		Status:     updated.Status,
		EtaMinutes: updated.EtaMinutes,
		UpdatedAt:  updated.UpdatedAt,
	})
}

func (h *CompanyRequestHandler) UpdateStatus(c echo.Context) error {
	var req statusRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	updated, err := h.companyRequestUseCase.UpdateStatus(c.Request().Context(), middleware.PrincipalFrom(c).UserID, c.Param("id"), req.Status)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, statusResponse{
		ID:          updated.ID,
		Status:      updated.Status,
		CompletedAt: updated.CompletedAt,
		UpdatedAt:   updated.UpdatedAt,
	})
}

package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/middleware"
	"roadrescue/internal/domain/entity"
	"roadrescue/internal/usecase"
	"roadrescue/pkg/errors"
	"roadrescue/pkg/response"
	"roadrescue/pkg/utils"
)

type CategoryHandler struct {
	categoryUseCase *usecase.CategoryUseCase
}

func NewCategoryHandler(categoryUseCase *usecase.CategoryUseCase) *CategoryHandler {
	return &CategoryHandler{categoryUseCase: categoryUseCase}
}

type categoryResponse struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.categoryUseCase.ListActive(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	items := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		items = append(items, categoryResponse{ID: cat.ID, Key: cat.Key, Name: cat.Name, Description: cat.Description})
	}
	return response.List(c, items, len(items))
}

type CompanyHandler struct {
	companyUseCase *usecase.CompanyUseCase
}

func NewCompanyHandler(companyUseCase *usecase.CompanyUseCase) *CompanyHandler {
	return &CompanyHandler{companyUseCase: companyUseCase}
}

// queryFloat parses an optional numeric query parameter.
func queryFloat(c echo.Context, name string) (*float64, bool) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// Suggest handles GET /companies/suggest?categoryId=&lat=&lng=&radiusKm=&limit=
func (h *CompanyHandler) Suggest(c echo.Context) error {
	lat, okLat := queryFloat(c, "lat")
	lng, okLng := queryFloat(c, "lng")
	if !okLat || !okLng {
		return response.Error(c, errors.BadRequest("lat/lng must be numbers", nil))
	}
	radius, ok := queryFloat(c, "radiusKm")
	if !ok {
		return response.Error(c, errors.BadRequest("radiusKm must be a positive number", nil))
	}

	items, err := h.companyUseCase.Suggest(c.Request().Context(), usecase.SuggestInput{
		CategoryID: strings.TrimSpace(c.QueryParam("categoryId")),
		Lat:        lat,
		Lng:        lng,
		RadiusKm:   radius,
		Limit:      utils.QueryInt(c, "limit", usecase.DefaultSuggestLimit),
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.List(c, items, len(items))
}

type companyProfileResponse struct {
	ID              string                  `json:"id"`
	Email           string                  `json:"email"`
	Name            string                  `json:"name"`
	Phone           string                  `json:"phone"`
	CompanyName     string                  `json:"companyName"`
	CompanyStatus   entity.CompanyStatus    `json:"companyStatus"`
	CompanyLocation *entity.LatLng          `json:"companyLocation"`
	CompanyServices []entity.CompanyService `json:"companyServices"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

func newCompanyProfileResponse(u *entity.User) companyProfileResponse {
	out := companyProfileResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Phone:           u.Phone,
		CompanyServices: []entity.CompanyService{},
		UpdatedAt:       u.UpdatedAt,
	}
	if profile, ok := u.AsCompany(); ok {
		out.CompanyName = profile.Name
		out.CompanyStatus = profile.Status
		if profile.Location != nil && profile.Location.Valid() {
			loc := profile.Location.LatLng()
			out.CompanyLocation = &loc
		}
		if profile.Services != nil {
			out.CompanyServices = profile.Services
		}
	}
	return out
}

type serviceRequest struct {
	CategoryID string   `json:"categoryId"`
	BasePrice  *float64 `json:"basePrice"`
}

type updateProfileRequest struct {
	Lat      *float64         `json:"lat"`
	Lng      *float64         `json:"lng"`
	Services []serviceRequest `json:"services" validate:"max=50"`
}

func (h *CompanyHandler) GetProfile(c echo.Context) error {
	user, err := h.companyUseCase.GetProfile(c.Request().Context(), middleware.PrincipalFrom(c).UserID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, newCompanyProfileResponse(user))
}

func (h *CompanyHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	services := make([]usecase.ServiceInput, 0, len(req.Services))
	for _, s := range req.Services {
		services = append(services, usecase.ServiceInput{CategoryID: s.CategoryID, BasePrice: s.BasePrice})
	}

	user, err := h.companyUseCase.UpdateProfile(c.Request().Context(), middleware.PrincipalFrom(c).UserID, usecase.UpdateProfileInput{
		Lat:      req.Lat,
		Lng:      req.Lng,
		Services: services,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, newCompanyProfileResponse(user))
}

package handler

import (
	"github.com/labstack/echo/v4"

	"roadrescue/internal/adapter/api/middleware"
	"roadrescue/internal/usecase"
	"roadrescue/pkg/errors"
	"roadrescue/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type registerRequest struct {
	Email       string `json:"email" validate:"max=254"`
	Password    string `json:"password" validate:"max=128"`
	Role        string `json:"role"`
	Name        string `json:"name" validate:"max=100"`
	Phone       string `json:"phone" validate:"max=30"`
	CompanyName string `json:"companyName" validate:"max=200"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        userResponse `json:"user"`
}

func bindBody(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(req)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.authUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		Name:        req.Name,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, newUserResponse(user))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, loginResponse{
		AccessToken: result.Token,
		User:        newUserResponse(result.User),
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	p := middleware.PrincipalFrom(c)
	user, err := h.authUseCase.Me(c.Request().Context(), p.UserID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, newUserResponse(user))
}

// Logout revokes the presented token until it would have expired anyway.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authUseCase.Logout(c.Request().Context(), middleware.PrincipalFrom(c)); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Logged out"})
}

package middleware

import (
	"github.com/labstack/echo/v4"

	"roadrescue/internal/domain/entity"
	"roadrescue/internal/domain/repository"
	"roadrescue/pkg/errors"
)

// RequireRoles lets the request through only when the principal holds one of
// roles. It must run after Authenticate.
func RequireRoles(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if p == nil || p.Role == "" {
				return errors.Unauthorized("Unauthorized", nil)
			}
			for _, r := range roles {
				if p.Role == r {
					return next(c)
				}
			}
			return errors.Forbidden("Forbidden", nil)
		}
	}
}

// CompanyMiddleware checks the persisted company status, which can change
// after a token was issued.
type CompanyMiddleware struct {
	userRepo repository.UserRepository
}

func NewCompanyMiddleware(userRepo repository.UserRepository) *CompanyMiddleware {
	return &CompanyMiddleware{
		userRepo: userRepo,
	}
}

// RequireActive rejects COMPANY callers whose account is not ACTIVE. Other
// roles pass through untouched.
func (m *CompanyMiddleware) RequireActive(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := PrincipalFrom(c)
		if p == nil || p.UserID == "" {
			return errors.Unauthorized("Unauthorized", nil)
		}
		if p.Role != entity.RoleCompany {
			return next(c)
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), p.UserID)
		if err != nil {
			if errors.Is(err, "NOT_FOUND") {
				return errors.Unauthorized("Unauthorized", nil)
			}
			return err
		}

		status := entity.CompanyPending
		if profile, ok := user.AsCompany(); ok && profile.Status != "" {
			status = profile.Status
		}
		if status != entity.CompanyActive {
			return errors.Forbidden("Company is "+string(status), nil).With("companyStatus", status)
		}

		return next(c)
	}
}

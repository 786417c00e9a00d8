package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"roadrescue/internal/domain/entity"
	"roadrescue/pkg/errors"
)

const principalKey = "principal"

// Authenticator turns a bearer token into the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.Principal, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// Authenticate requires a valid bearer token and stores the principal on the
// echo context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return errors.Unauthorized("Missing Bearer token", nil)
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return errors.Unauthorized("Missing Bearer token", nil)
		}

		p, err := m.auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		SetPrincipal(c, p)
		return next(c)
	}
}

// AuthenticateQuery is Authenticate for clients that cannot set headers, such
// as browser websockets. The token comes from ?token=.
func (m *AuthMiddleware) AuthenticateQuery(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := strings.TrimSpace(c.QueryParam("token"))
		if token == "" {
			return errors.Unauthorized("Missing token", nil)
		}

		p, err := m.auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		SetPrincipal(c, p)
		return next(c)
	}
}

func SetPrincipal(c echo.Context, p *entity.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the authenticated caller, or nil on public routes.
func PrincipalFrom(c echo.Context) *entity.Principal {
	p, _ := c.Get(principalKey).(*entity.Principal)
	return p
}

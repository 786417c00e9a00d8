package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadrescue/internal/adapter/api"
	"roadrescue/internal/adapter/repository"
	"roadrescue/internal/domain/entity"
	"roadrescue/pkg/errors"
	"roadrescue/pkg/response"
)

type stubAuth map[string]*entity.Principal

func (s stubAuth) Authenticate(ctx context.Context, token string) (*entity.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, errors.Unauthorized("Invalid or expired token", nil)
}

type blockAll struct{}

func (blockAll) Allow(string) (bool, time.Duration) { return false, 1500 * time.Millisecond }

type countingObserver struct{ n map[string]int }

func (o *countingObserver) RateLimited(name string) { o.n[name]++ }

func newEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = response.ErrorHandler
	return e
}

func ok(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func do(e *echo.Echo, method, target, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	body := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthMiddleware(stubAuth{
		"good": {UserID: "u1", Role: entity.RoleCustomer},
	})
	e := newEcho()
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, PrincipalFrom(c).UserID)
	}, auth.Authenticate)

	rec, body := do(e, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing Bearer token", body["message"])

	rec, body = do(e, http.MethodGet, "/me", "bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", body["message"])

	rec, _ = do(e, http.MethodGet, "/me", "good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestAuthenticateQuery(t *testing.T) {
	auth := NewAuthMiddleware(stubAuth{"good": {UserID: "u1", Role: entity.RoleCompany}})
	e := newEcho()
	e.GET("/ws", ok, auth.AuthenticateQuery)

	rec, body := do(e, http.MethodGet, "/ws", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing token", body["message"])

	rec, _ = do(e, http.MethodGet, "/ws?token=good", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	auth := NewAuthMiddleware(stubAuth{
		"customer": {UserID: "c1", Role: entity.RoleCustomer},
		"admin":    {UserID: "a1", Role: entity.RoleAdmin},
	})
	e := newEcho()
	e.GET("/admin", ok, auth.Authenticate, RequireRoles(entity.RoleAdmin))
	e.GET("/open", ok, RequireRoles(entity.RoleAdmin))

	rec, body := do(e, http.MethodGet, "/admin", "customer")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden", body["message"])

	rec, _ = do(e, http.MethodGet, "/admin", "admin")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(e, http.MethodGet, "/open", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireActive(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	now := time.Now()

	pending := entity.NewCompany("", "pending@x.io", "hash", "Owner", "0900", "Pending Co", now)
	require.NoError(t, users.Create(ctx, pending))
	active := entity.NewCompany("", "active@x.io", "hash", "Owner", "0900", "Active Co", now)
	active.Company.Status = entity.CompanyActive
	require.NoError(t, users.Create(ctx, active))

	auth := NewAuthMiddleware(stubAuth{
		"pending":  {UserID: pending.ID, Role: entity.RoleCompany},
		"active":   {UserID: active.ID, Role: entity.RoleCompany},
		"ghost":    {UserID: "missing", Role: entity.RoleCompany},
		"customer": {UserID: "c1", Role: entity.RoleCustomer},
	})
	gate := NewCompanyMiddleware(users)
	e := newEcho()
	e.GET("/company/requests", ok, auth.Authenticate, gate.RequireActive)

	rec, body := do(e, http.MethodGet, "/company/requests", "pending")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Company is PENDING", body["message"])
	assert.Equal(t, "PENDING", body["companyStatus"])

	rec, _ = do(e, http.MethodGet, "/company/requests", "active")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(e, http.MethodGet, "/company/requests", "ghost")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(e, http.MethodGet, "/company/requests", "customer")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	obs := &countingObserver{n: map[string]int{}}
	e := newEcho()
	e.GET("/x", ok, RateLimit("http", blockAll{}, obs))

	rec, body := do(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, "Rate limit exceeded", body["message"])
	assert.EqualValues(t, 2, body["retryAfter"])
	assert.Equal(t, 1, obs.n["http"])
}

type keyRecorder struct{ keys []string }

func (k *keyRecorder) Allow(key string) (bool, time.Duration) {
	k.keys = append(k.keys, key)
	return true, 0
}

func TestRateLimit_KeysOnPeerAddress(t *testing.T) {
	limiter := &keyRecorder{}
	e := newEcho()
	e.IPExtractor = api.NewIPExtractor(false)
	e.GET("/x", ok, RateLimit("http", limiter, nil))

	for _, spoofed := range []string{"1.1.1.1", "2.2.2.2"} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set(echo.HeaderXForwardedFor, spoofed)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, []string{"203.0.113.9", "203.0.113.9"}, limiter.keys)
}

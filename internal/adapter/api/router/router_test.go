package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadrescue/internal/adapter/api"
	"roadrescue/internal/adapter/api/handler"
	"roadrescue/internal/adapter/api/middleware"
	"roadrescue/internal/adapter/repository"
	"roadrescue/internal/infrastructure/jwt"
	"roadrescue/internal/infrastructure/metrics"
	"roadrescue/internal/infrastructure/password"
	"roadrescue/internal/infrastructure/ratelimit"
	"roadrescue/internal/infrastructure/revocation"
	"roadrescue/internal/infrastructure/websocket"
	"roadrescue/internal/seed"
	"roadrescue/internal/usecase"
	"roadrescue/pkg/response"
)

const (
	adminEmail    = "admin@rescue.local"
	adminPassword = "admin123"
)

type testServer struct {
	e          *echo.Echo
	categories map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	repos := repository.NewMemoryRepositories()
	m := metrics.New()
	hub := websocket.NewHub(m)

	auth := usecase.NewAuthUseCase(repos.Users, password.NewBcryptHasher(4), jwt.NewTokenService("test-secret", time.Hour), revocation.NewMemoryRevoker())
	community := usecase.NewCommunityUseCase(repos.Topics, repos.Tips, repos.Users)

	_, err := seed.Categories(ctx, repos.Categories, time.Now())
	require.NoError(t, err)
	_, err = seed.Admin(ctx, auth, adminEmail, adminPassword)
	require.NoError(t, err)

	all, err := repos.Categories.List(ctx, true)
	require.NoError(t, err)
	categories := make(map[string]string, len(all))
	for _, c := range all {
		categories[c.Key] = c.ID
	}

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.ErrorHandler
	e.IPExtractor = api.NewIPExtractor(false)
	e.Use(middleware.Metrics(m))
	e.Use(middleware.RateLimit("http", ratelimit.NewRateLimiter(1000, 1000), m))

	Setup(e, Handlers{
		Auth:     handler.NewAuthHandler(auth),
		Category: handler.NewCategoryHandler(usecase.NewCategoryUseCase(repos.Categories)),
		Company:  handler.NewCompanyHandler(usecase.NewCompanyUseCase(repos.Users, repos.Categories)),
		Request: handler.NewRequestHandler(
			usecase.NewRequestUseCase(repos.Requests, repos.Users, repos.Categories, hub, m)),
		CompanyRequest: handler.NewCompanyRequestHandler(
			usecase.NewCompanyRequestUseCase(repos.Requests, repos.Users, repos.Categories, hub, m)),
		Chat: handler.NewChatHandler(
			usecase.NewChatUseCase(repos.Requests, repos.Chats, repos.Users, hub, ratelimit.NewPerMinute(100), m)),
		Community: handler.NewCommunityHandler(community),
		Admin: handler.NewAdminHandler(usecase.NewAdminUseCase(repos.Users),
			usecase.NewReportUseCase(repos.Users, repos.Requests, repos.Categories, time.UTC)),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{}),
	}, middleware.NewAuthMiddleware(auth), middleware.NewCompanyMiddleware(repos.Users), m.Handler())

	return &testServer{e: e, categories: categories}
}

func (s *testServer) call(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (s *testServer) login(t *testing.T, email, pass string) (string, string) {
	t.Helper()
	code, body := s.call(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": pass})
	require.Equal(t, http.StatusOK, code, body)
	user := body["user"].(map[string]interface{})
	return body["accessToken"].(string), user["id"].(string)
}

func (s *testServer) register(t *testing.T, payload map[string]string) {
	t.Helper()
	code, body := s.call(t, http.MethodPost, "/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, code, body)
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t)

	code, body := s.call(t, http.MethodGet, "/categories", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 5, body["count"])

	code, body = s.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])

	code, body = s.call(t, http.MethodGet, "/community/tips", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["page"])

	code, body = s.call(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", body["code"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "roadrescue_")
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/auth/me", "/requests/my", "/company/requests", "/admin/companies", "/chat/rooms"} {
		code, body := s.call(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, "Missing Bearer token", body["message"], path)
	}

	code, body := s.call(t, http.MethodGet, "/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid or expired token", body["message"])
}

func TestRescueFlow(t *testing.T) {
	s := newTestServer(t)
	fuel := s.categories["FUEL"]

	s.register(t, map[string]string{
		"email": "khach@example.com", "password": "secret1", "role": "CUSTOMER",
		"name": "Khach", "phone": "0901111111",
	})
	s.register(t, map[string]string{
		"email": "cuuho@example.com", "password": "secret1", "role": "COMPANY",
		"name": "Owner", "phone": "0902222222", "companyName": "Cuu Ho 24h",
	})

	customerToken, _ := s.login(t, "khach@example.com", "secret1")
	companyToken, companyID := s.login(t, "cuuho@example.com", "secret1")
	adminToken, _ := s.login(t, adminEmail, adminPassword)

	// Pending companies may edit their profile but not see requests.
	code, body := s.call(t, http.MethodGet, "/company/requests", companyToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "PENDING", body["companyStatus"])

	code, body = s.call(t, http.MethodPut, "/company/profile", companyToken, map[string]interface{}{
		"lat": 10.7769, "lng": 106.7009,
		"services": []map[string]interface{}{{"categoryId": fuel, "basePrice": 50000}},
	})
	require.Equal(t, http.StatusOK, code, body)

	code, _ = s.call(t, http.MethodGet, "/admin/companies", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.call(t, http.MethodPatch, "/admin/companies/"+companyID+"/status", adminToken,
		map[string]string{"companyStatus": "ACTIVE"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "ACTIVE", body["companyStatus"])

	code, body = s.call(t, http.MethodGet,
		fmt.Sprintf("/companies/suggest?categoryId=%s&lat=10.78&lng=106.70&radiusKm=10", fuel), "", nil)
	require.Equal(t, http.StatusOK, code, body)
	require.EqualValues(t, 1, body["count"])
	first := body["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, companyID, first["id"])

	createBody := map[string]interface{}{
		"categoryId": fuel, "companyId": companyID, "issueType": "Hết xăng",
		"contactName": "Khach", "contactPhone": "0901111111", "lat": 10.78, "lng": 106.70,
	}
	code, _ = s.call(t, http.MethodPost, "/requests", companyToken, createBody)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.call(t, http.MethodPost, "/requests", customerToken, createBody)
	require.Equal(t, http.StatusCreated, code, body)
	requestID := body["id"].(string)
	assert.Equal(t, "PENDING", body["status"])

	code, body = s.call(t, http.MethodGet, "/chat/rooms", customerToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])

	code, body = s.call(t, http.MethodPatch, "/company/requests/"+requestID+"/eta", companyToken,
		map[string]interface{}{"etaMinutes": 15})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "ASSIGNED", body["status"])
	assert.EqualValues(t, 15, body["etaMinutes"])

	code, body = s.call(t, http.MethodPost, "/chat/rooms/"+requestID+"/messages", customerToken,
		map[string]string{"text": "Tôi đang ở gần cây xăng"})
	require.Equal(t, http.StatusCreated, code, body)

	code, body = s.call(t, http.MethodGet, "/chat/rooms/"+requestID+"/messages", companyToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "ASSIGNED", body["requestStatus"])

	code, body = s.call(t, http.MethodGet, "/chat/rooms/"+requestID+"/messages?after=yesterday", companyToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "after must be an ISO date", body["message"])

	for _, status := range []string{"IN_PROGRESS", "COMPLETED"} {
		code, body = s.call(t, http.MethodPatch, "/company/requests/"+requestID+"/status", companyToken,
			map[string]string{"status": status})
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, status, body["status"])
	}

	code, body = s.call(t, http.MethodPost, "/requests/"+requestID+"/confirm", customerToken,
		map[string]interface{}{"rating": 5, "review": "Nhanh"})
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 5, body["customerRating"])

	code, body = s.call(t, http.MethodGet, "/requests/"+requestID, customerToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "COMPLETED", body["status"])

	code, body = s.call(t, http.MethodGet, "/company/requests/history", companyToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 1, body["count"])
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.login(t, adminEmail, adminPassword)

	code, body := s.call(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "ADMIN", body["role"])

	code, body = s.call(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Logged out", body["message"])

	code, _ = s.call(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCommunityListsHugePage(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/community/topics?page=1000000000000000000",
		"/community/tips?page=1000000000000000000&limit=50",
	} {
		code, body := s.call(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, code, path)
		assert.EqualValues(t, 0, body["count"], path)
		assert.Empty(t, body["items"], path)
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadrescue/pkg/errors"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func checkHealth(t *testing.T, checks map[string]Pinger) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	require.NoError(t, NewHealthHandler(checks).CheckHealth(c))

	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestCheckHealth(t *testing.T) {
	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.Internal("redis unreachable", nil) })

	code, body := checkHealth(t, map[string]Pinger{"redis": up})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, map[string]interface{}{"redis": "ok"}, body["dependencies"])

	code, body = checkHealth(t, map[string]Pinger{"redis": down, "firestore": up})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, false, body["ok"])
	deps := body["dependencies"].(map[string]interface{})
	assert.Equal(t, "ok", deps["firestore"])
	assert.NotEqual(t, "ok", deps["redis"])
}

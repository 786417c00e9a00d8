package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func paginationFor(target string) PaginationParams {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
	return GetPaginationParams(c, 10, 50)
}

func TestGetPaginationParams(t *testing.T) {
	p := paginationFor("/x")
	assert.Equal(t, PaginationParams{Page: 1, Limit: 10, Offset: 0}, p)

	p = paginationFor("/x?page=3&limit=20")
	assert.Equal(t, PaginationParams{Page: 3, Limit: 20, Offset: 40}, p)

	p = paginationFor("/x?page=-2&limit=500")
	assert.Equal(t, PaginationParams{Page: 1, Limit: 50, Offset: 0}, p)
}

func TestGetPaginationParams_HugePageKeepsOffsetPositive(t *testing.T) {
	for _, target := range []string{
		"/x?page=1000000000000000000",
		"/x?page=1000000000000000000&limit=50",
		"/x?page=99999999999999999999999",
	} {
		p := paginationFor(target)
		assert.GreaterOrEqual(t, p.Page, 1, target)
		assert.GreaterOrEqual(t, p.Offset, 0, target)
		assert.Equal(t, (p.Page-1)*p.Limit, p.Offset, target)
	}
}

package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// GetPaginationParams extracts page/limit from the query string. limit falls
// back to defaultLimit when absent and is capped at maxLimit.
func GetPaginationParams(c echo.Context, defaultLimit, maxLimit int) PaginationParams {
	limit := QueryInt(c, "limit", defaultLimit)
	limit = ClampInt(limit, 1, maxLimit)

	// page is capped so the offset cannot overflow.
	page, _ := strconv.Atoi(c.QueryParam("page"))
	page = ClampInt(page, 1, math.MaxInt32/limit+1)

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// QueryInt reads an integer query parameter, returning def when it is missing
// or not a number.
func QueryInt(c echo.Context, name string, def int) int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

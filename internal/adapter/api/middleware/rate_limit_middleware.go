package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"roadrescue/pkg/errors"
	"roadrescue/pkg/logger"
)

// Limiter is satisfied by ratelimit.RateLimiter.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

// LimitObserver counts rejected requests per limiter name.
type LimitObserver interface {
	RateLimited(limiter string)
}

// RateLimit throttles requests per client IP.
func RateLimit(name string, limiter Limiter, observer LimitObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			ok, retryAfter := limiter.Allow(ip)
			if ok {
				return next(c)
			}

			if observer != nil {
				observer.RateLimited(name)
			}
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			logger.Warn("rate limit %s: blocked %s for %ds", name, ip, seconds)

			c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
			return errors.TooManyRequests("Rate limit exceeded").With("retryAfter", seconds)
		}
	}
}

package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"roadrescue/pkg/logger"
)

// HTTPObserver records per-route request metrics.
type HTTPObserver interface {
	InFlight(delta float64)
	ObserveHTTP(method, path, status string, seconds float64)
}

// Metrics observes every request under its route template so ids do not
// explode label cardinality.
func Metrics(observer HTTPObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			observer.InFlight(1)
			defer observer.InFlight(-1)

			err := next(c)
			if err != nil {
				// render now so the recorded status is the real one
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := strconv.Itoa(c.Response().Status)
			observer.ObserveHTTP(c.Request().Method, path, status, time.Since(start).Seconds())
			return nil
		}
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			event := logger.L().Info()
			if v.Error != nil || v.Status >= 500 {
				event = logger.L().Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

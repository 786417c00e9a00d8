package api

import "github.com/labstack/echo/v4"

// NewIPExtractor decides which address identifies a client for per-IP rate
// limiting. Forwarding headers are only honoured behind a trusted proxy,
// and then only when the hop itself is a private or loopback address.
func NewIPExtractor(trustProxy bool) echo.IPExtractor {
	if trustProxy {
		return echo.ExtractIPFromXFFHeader()
	}
	return echo.ExtractIPDirect()
}

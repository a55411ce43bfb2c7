package middleware

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
)

// APIKeyAuth validates the API key from the Authorization header. An empty
// key disables authentication. Comparison is constant-time.
func APIKeyAuth(apiKey string, logger *slog.Logger) echo.MiddlewareFunc {
	if apiKey == "" && logger != nil {
		logger.Warn("API key not configured, API is unsecured")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()

			// Health endpoints stay open
			if strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/ready") {
				return next(c)
			}

			// Development mode
			if apiKey == "" {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if logger != nil {
					logger.Warn("missing authorization header",
						slog.String("ip", c.RealIP()),
						slog.String("path", path))
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "missing authorization header",
					"code":  "UNAUTHORIZED",
				})
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				if logger != nil {
					logger.Warn("invalid API key attempt",
						slog.String("ip", c.RealIP()),
						slog.String("path", path))
				}
				return echo.NewHTTPError(401, map[string]string{
					"error": "invalid API key",
					"code":  "UNAUTHORIZED",
				})
			}

			return next(c)
		}
	}
}

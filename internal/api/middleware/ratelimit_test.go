package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_WithinLimit(t *testing.T) {
	e := echo.New()
	// Allow 10 requests per second with burst of 20
	e.Use(RateLimiter(10, 20, nil))
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_ExceedsLimit(t *testing.T) {
	e := echo.New()
	// Very restrictive: 1 request per second, burst of 1
	e.Use(RateLimiter(1, 1, nil))
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	// First request should pass
	req1 := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec1 := httptest.NewRecorder()
	e.ServeHTTP(rec1, req1)
	assert.Equal(t, http.StatusOK, rec1.Code)

	// Second request should be rate limited
	req2 := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
}

func TestRateLimiter_RetryAfterHeader(t *testing.T) {
	e := echo.New()
	e.Use(RateLimiter(1, 1, nil))
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	// Exhaust the burst
	req1 := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec1 := httptest.NewRecorder()
	e.ServeHTTP(rec1, req1)

	req2 := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, req2)

	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.Equal(t, "60", rec2.Header().Get("Retry-After"))
}

func TestRateLimiter_DefaultsWhenZero(t *testing.T) {
	e := echo.New()
	// Zero values fall back to defaults rather than blocking everything
	e.Use(RateLimiter(0, 0, nil))
	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIPRateLimiter_SeparateLimitersPerIP(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)

	l1 := limiter.GetLimiter("10.0.0.1")
	l2 := limiter.GetLimiter("10.0.0.2")

	assert.NotSame(t, l1, l2)
	// Same IP returns the same limiter
	assert.Same(t, l1, limiter.GetLimiter("10.0.0.1"))
}

func TestIPRateLimiter_CleanupOldEntries(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)

	first := limiter.GetLimiter("10.0.0.1")
	limiter.CleanupOldEntries()
	second := limiter.GetLimiter("10.0.0.1")

	assert.NotSame(t, first, second)
}

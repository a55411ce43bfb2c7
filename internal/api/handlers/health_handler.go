package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// HealthHandler reports process and dependency health
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

func (h *HealthHandler) pingDB() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	resp := HealthResponse{
		Status:   "healthy",
		Services: map[string]string{"database": "healthy"},
	}
	code := http.StatusOK

	if err := h.pingDB(); err != nil {
		resp.Status = "unhealthy"
		resp.Services["database"] = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, resp)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c echo.Context) error {
	if err := h.pingDB(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "database unreachable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}

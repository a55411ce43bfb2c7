package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupHealthTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	// GORM pings during initialization
	mock.ExpectPing()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       db,
		DriverName: "postgres",
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() { db.Close() }
}

func TestHealthHandler_Endpoints(t *testing.T) {
	tests := []struct {
		name         string
		call         func(*HealthHandler, echo.Context) error
		pingErr      error
		wantCode     int
		wantFragment string
	}{
		{
			name:         "health with reachable database",
			call:         (*HealthHandler).Health,
			wantCode:     http.StatusOK,
			wantFragment: `"database":"healthy"`,
		},
		{
			name:         "health with unreachable database",
			call:         (*HealthHandler).Health,
			pingErr:      sql.ErrConnDone,
			wantCode:     http.StatusServiceUnavailable,
			wantFragment: `"database":"unhealthy"`,
		},
		{
			name:         "ready with reachable database",
			call:         (*HealthHandler).Ready,
			wantCode:     http.StatusOK,
			wantFragment: `"status":"ready"`,
		},
		{
			name:         "ready with unreachable database",
			call:         (*HealthHandler).Ready,
			pingErr:      sql.ErrConnDone,
			wantCode:     http.StatusServiceUnavailable,
			wantFragment: `"status":"not ready"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock, cleanup := setupHealthTestDB(t)
			defer cleanup()

			exp := mock.ExpectPing()
			if tt.pingErr != nil {
				exp.WillReturnError(tt.pingErr)
			}

			handler := NewHealthHandler(gormDB)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			require.NoError(t, tt.call(handler, c))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantFragment)
		})
	}
}

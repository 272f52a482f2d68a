package app_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/bizledger/internal/app"
	"github.com/SscSPs/bizledger/internal/platform/config"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:            "0",
		StoreDriver:     config.DriverSQLite,
		SQLitePath:      filepath.Join(t.TempDir(), "app.db"),
		LockBackend:     config.LockLocal,
		LockWaitTimeout: time.Second,
		LockTTL:         time.Minute,
		RateLimit:       "1000-M",
		LogLevel:        "warn",
	}
}

func TestNew_SQLiteRouter(t *testing.T) {
	cfg := sqliteConfig(t)
	a, err := app.New(context.Background(), cfg, slog.Default(), false)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	r, err := a.Router()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenants/acme/accounts", nil)
	req.Header.Set("Origin", "http://pos.local")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/health",status="200"}`)
}

func TestNew_BadRateLimit(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.RateLimit = "often"
	a, err := app.New(context.Background(), cfg, slog.Default(), false)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	_, err = a.Router()
	assert.Error(t, err)
}

func TestRequiredKeys(t *testing.T) {
	a, err := app.New(context.Background(), sqliteConfig(t), slog.Default(), false)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	keys, err := a.RequiredKeys("school, hotelflow")
	require.NoError(t, err)
	assert.Equal(t, []string{"ar", "bank", "cash", "sales", "tax_payable"}, keys)

	_, err = a.RequiredKeys("cinema")
	assert.Error(t, err)
}

func TestNewLogger_Level(t *testing.T) {
	logger := app.NewLogger(&config.Config{LogLevel: "warn"})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	logger = app.NewLogger(&config.Config{LogLevel: "loud"})
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

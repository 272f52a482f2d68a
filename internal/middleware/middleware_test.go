package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, rate string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.Default()))

	group := r.Group("/tenants/:tenantID", middleware.TenantMiddleware("tenantID"))
	if rate != "" {
		lim, err := middleware.NewRateLimiter(rate)
		require.NoError(t, err)
		group.Use(middleware.RateLimit(lim))
	}
	group.GET("/ping", func(c *gin.Context) {
		tenantID, ok := middleware.GetTenantIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		assert.NotNil(t, middleware.GetLoggerFromCtx(c.Request.Context()))
		c.String(http.StatusOK, tenantID)
	})
	return r
}

func TestTenantMiddleware(t *testing.T) {
	r := newTestRouter(t, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tenants/acme_01/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "acme_01", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tenants/bad$tenant/ping", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStructuredLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	r := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/tenants/acme/ping", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestRateLimit_PerTenant(t *testing.T) {
	r := newTestRouter(t, "2-M")

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tenants/acme/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tenants/acme/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Another tenant has its own budget.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tenants/other/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRateLimiter_InvalidFormat(t *testing.T) {
	_, err := middleware.NewRateLimiter("lots")
	assert.Error(t, err)
}

package middleware

import (
	"log/slog"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// TenantMiddleware reads the tenant identifier from the named path parameter, rejects
// malformed values and enriches the request logger. The ledger never derives tenant
// identity itself; handlers pass the value on explicitly.
func TenantMiddleware(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.Param(param)
		if !tenantIDPattern.MatchString(tenantID) {
			GetLoggerFromContext(c).Warn("Rejected request with invalid tenant ID", slog.String("tenant_id", tenantID))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant ID"})
			return
		}

		logger := GetLoggerFromContext(c).With(slog.String("tenant_id", tenantID))
		c.Set(string(loggerKey), logger)
		c.Set(string(tenantIDKey), tenantID)
		c.Request = c.Request.WithContext(WithLogger(c.Request.Context(), logger))
		c.Next()
	}
}

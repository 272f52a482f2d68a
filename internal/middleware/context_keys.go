package middleware

import "github.com/gin-gonic/gin"

// tenantIDKey is the key used to store the request's tenant ID in the Gin context.
const tenantIDKey = contextKey("tenantID")

// GetTenantIDFromContext retrieves the tenant ID set by TenantMiddleware.
// It returns the tenant ID and a boolean indicating if it was found.
func GetTenantIDFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(tenantIDKey))
	if !exists {
		return "", false
	}
	tenantID, ok := val.(string)
	if !ok || tenantID == "" {
		return "", false
	}
	return tenantID, true
}

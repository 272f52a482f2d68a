package handlers

import (
	portssvc "github.com/SscSPs/bizledger/internal/core/ports/services"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// tenantMiddleware runs after tenant resolution on every tenant-scoped route (e.g. rate limiting).
func RegisterRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	manifest *config.ModuleManifest,
	tenantMiddleware ...gin.HandlerFunc,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services, manifest, tenantMiddleware)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	manifest *config.ModuleManifest,
	tenantMiddleware []gin.HandlerFunc,
) {
	handlers := append([]gin.HandlerFunc{middleware.TenantMiddleware("tenantID")}, tenantMiddleware...)
	tenant := r.Group("/api/v1/tenants/:tenantID", handlers...)

	registerAccountRoutes(tenant, services.Account, services.AccountMap, manifest)
	registerJournalRoutes(tenant, services.Journal)
	registerStockRoutes(tenant, services.Stock)
	registerEventRoutes(tenant, services.Posting)
	registerReportingRoutes(tenant, services.Reporting, manifest)
}

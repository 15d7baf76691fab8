package handlers

import (
	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
	"github.com/finbooks/general_ledger_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	// Every ledger resource is scoped to a tenant.
	tenant := v1.Group("/tenants/:tenant_id")

	registerAccountRoutes(tenant, services.Account)
	registerChartRoutes(tenant, services.Account, cfg.ChartTemplatePath)
	registerJournalRoutes(tenant, services.Journal)
	registerPeriodRoutes(tenant, services.Period)
	registerReportingRoutes(tenant, services.Reporting)
	registerIntegrityRoutes(tenant, services.Integrity)
}

// tenantID extracts the tenant scope from the route.
func tenantID(c *gin.Context) string {
	return c.Param("tenant_id")
}

// actingUser identifies the caller for audit fields. Authentication lives in
// front of this service; the gateway forwards the resolved principal.
func actingUser(c *gin.Context) string {
	if user := c.GetHeader("X-User-ID"); user != "" {
		return user
	}
	return "system"
}

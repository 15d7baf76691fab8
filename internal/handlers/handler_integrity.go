package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
	"github.com/finbooks/general_ledger_app/internal/dto"
	"github.com/finbooks/general_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// integrityHandler handles HTTP requests for ledger integrity checks.
type integrityHandler struct {
	integrityService portssvc.IntegritySvcFacade
}

func newIntegrityHandler(is portssvc.IntegritySvcFacade) *integrityHandler {
	return &integrityHandler{integrityService: is}
}

// registerIntegrityRoutes registers the integrity and reconciliation routes.
func registerIntegrityRoutes(rg *gin.RouterGroup, integrityService portssvc.IntegritySvcFacade) {
	h := newIntegrityHandler(integrityService)

	integrity := rg.Group("/integrity")
	{
		integrity.GET("/validate", h.validate)
		integrity.POST("/reconcile/:period_id", h.reconcile)
		integrity.GET("/exceptions/:period_id", h.exceptions)
	}
}

func (h *integrityHandler) validate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.integrityService.ValidateGLIntegrity(c.Request.Context(), tenantID(c))
	if err != nil {
		respondError(c, logger, err, "validate ledger integrity")
		return
	}

	if !report.Clean {
		logger.Warn("Ledger integrity findings reported", slog.Int("findings", len(report.Findings)))
	}
	c.JSON(http.StatusOK, report)
}

func (h *integrityHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for reconcile", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	report, err := h.integrityService.ReconcileTrialBalance(c.Request.Context(), tenantID(c), c.Param("period_id"), req.Expected)
	if err != nil {
		respondError(c, logger, err, "reconcile trial balance")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *integrityHandler) exceptions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.integrityService.GenerateExceptionReport(c.Request.Context(), tenantID(c), c.Param("period_id"))
	if err != nil {
		respondError(c, logger, err, "generate exception report")
		return
	}

	c.JSON(http.StatusOK, report)
}

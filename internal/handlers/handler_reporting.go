package handlers

import (
	"net/http"
	"time"

	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
	"github.com/finbooks/general_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for derived financial reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers the read-only report routes.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/profit-and-loss", h.profitAndLoss)
		reports.GET("/balance-sheet", h.balanceSheet)
		reports.GET("/cash-flow", h.cashFlow)
	}
}

// optionalTimeQuery parses an RFC3339 query parameter, returning nil when
// the parameter is absent.
func optionalTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + ": expected RFC3339 timestamp"})
		return nil, false
	}
	return &t, true
}

// requiredTimeQuery parses a mandatory RFC3339 query parameter.
func requiredTimeQuery(c *gin.Context, name string) (time.Time, bool) {
	t, ok := optionalTimeQuery(c, name)
	if !ok {
		return time.Time{}, false
	}
	if t == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: " + name})
		return time.Time{}, false
	}
	return *t, true
}

func (h *reportingHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := optionalTimeQuery(c, "asOf")
	if !ok {
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), tenantID(c), c.Query("periodID"), asOf)
	if err != nil {
		respondError(c, logger, err, "compute trial balance")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) profitAndLoss(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, ok := requiredTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := requiredTimeQuery(c, "to")
	if !ok {
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), tenantID(c), from, to)
	if err != nil {
		respondError(c, logger, err, "compute profit and loss")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) balanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	asOf, ok := optionalTimeQuery(c, "asOf")
	if !ok {
		return
	}
	at := time.Now()
	if asOf != nil {
		at = *asOf
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), tenantID(c), at)
	if err != nil {
		respondError(c, logger, err, "compute balance sheet")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) cashFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	from, ok := requiredTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := requiredTimeQuery(c, "to")
	if !ok {
		return
	}

	report, err := h.reportingService.CashFlowStatement(c.Request.Context(), tenantID(c), from, to)
	if err != nil {
		respondError(c, logger, err, "compute cash flow statement")
		return
	}

	c.JSON(http.StatusOK, report)
}

package handlers

import (
	"log/slog"
	"net/http"
	"sort"

	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
	"github.com/finbooks/general_ledger_app/internal/dto"
	"github.com/finbooks/general_ledger_app/internal/middleware"
	"github.com/finbooks/general_ledger_app/internal/platform/chart"
	"github.com/gin-gonic/gin"
)

// chartHandler seeds tenant charts from on-disk templates.
type chartHandler struct {
	accountService portssvc.AccountSvcFacade
	templateDir    string
}

func newChartHandler(as portssvc.AccountSvcFacade, templateDir string) *chartHandler {
	return &chartHandler{accountService: as, templateDir: templateDir}
}

// registerChartRoutes registers chart template routes. Disabled when no
// template directory is configured.
func registerChartRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, templateDir string) {
	if templateDir == "" {
		return
	}
	h := newChartHandler(accountService, templateDir)

	chartGroup := rg.Group("/chart")
	{
		chartGroup.GET("/templates", h.listTemplates)
		chartGroup.POST("/seed", h.seedChart)
	}
}

func (h *chartHandler) listTemplates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	templates, err := chart.LoadTemplateDir(h.templateDir)
	if err != nil {
		logger.Error("Failed to load chart templates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load chart templates"})
		return
	}

	summaries := make([]dto.ChartTemplateSummary, 0, len(templates))
	for key, tpl := range templates {
		summaries = append(summaries, dto.ChartTemplateSummary{
			Key:         key,
			Name:        tpl.Name,
			Description: tpl.Description,
			Currency:    tpl.Currency,
			Accounts:    len(tpl.Accounts),
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Key < summaries[j].Key })

	c.JSON(http.StatusOK, gin.H{"templates": summaries})
}

func (h *chartHandler) seedChart(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SeedChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for seedChart", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	templates, err := chart.LoadTemplateDir(h.templateDir)
	if err != nil {
		logger.Error("Failed to load chart templates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load chart templates"})
		return
	}
	tpl, ok := templates[req.Template]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown chart template: " + req.Template})
		return
	}

	created, err := chart.Seed(c.Request.Context(), h.accountService, tenantID(c), tpl, actingUser(c))
	if err != nil {
		respondError(c, logger, err, "seed chart of accounts")
		return
	}

	logger.Info("Chart seeded",
		slog.String("template", req.Template),
		slog.Int("accounts_created", len(created)))
	c.JSON(http.StatusCreated, gin.H{"accounts": dto.ToListAccountResponse(created)})
}

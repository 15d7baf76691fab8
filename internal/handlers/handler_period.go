package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/finbooks/general_ledger_app/internal/core/ports/services"
	"github.com/finbooks/general_ledger_app/internal/dto"
	"github.com/finbooks/general_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// periodHandler handles HTTP requests for accounting periods.
type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

func newPeriodHandler(ps portssvc.PeriodSvcFacade) *periodHandler {
	return &periodHandler{periodService: ps}
}

// registerPeriodRoutes registers routes related to accounting periods.
func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := newPeriodHandler(periodService)

	periods := rg.Group("/periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/:period_id", h.getPeriod)
		periods.POST("/:period_id/transition", h.transitionPeriod)
	}
}

func (h *periodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createPeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	period, err := h.periodService.CreatePeriod(c.Request.Context(), tenantID(c), req, actingUser(c))
	if err != nil {
		respondError(c, logger, err, "create period")
		return
	}

	logger.Info("Period created", slog.String("period_id", period.PeriodID))
	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

func (h *periodHandler) getPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	period, err := h.periodService.GetPeriod(c.Request.Context(), tenantID(c), c.Param("period_id"))
	if err != nil {
		respondError(c, logger, err, "retrieve period")
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

func (h *periodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	periods, err := h.periodService.ListPeriods(c.Request.Context(), tenantID(c))
	if err != nil {
		respondError(c, logger, err, "list periods")
		return
	}

	c.JSON(http.StatusOK, gin.H{"periods": dto.ToListPeriodResponse(periods)})
}

func (h *periodHandler) transitionPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	periodID := c.Param("period_id")

	var req dto.TransitionPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for transitionPeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	period, err := h.periodService.Transition(c.Request.Context(), tenantID(c), periodID, req.Status, actingUser(c))
	if err != nil {
		respondError(c, logger, err, "transition period")
		return
	}

	logger.Info("Period transitioned",
		slog.String("period_id", periodID),
		slog.String("status", string(period.Status)))
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finbooks/general_ledger_app/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// statusForError maps service sentinel errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrAlreadyReversed),
		errors.Is(err, apperrors.ErrPeriodTransition):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnbalanced),
		errors.Is(err, apperrors.ErrPeriodClosed),
		errors.Is(err, apperrors.ErrAccountInactive),
		errors.Is(err, apperrors.ErrPostingNotAllowed),
		errors.Is(err, apperrors.ErrPolarityViolation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError translates a service error into a JSON error response. The
// internal error text is never leaked on 5xx.
func respondError(c *gin.Context, logger *slog.Logger, err error, action string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error("Internal error: "+action, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": "Failed to " + action})
		return
	}
	logger.Warn("Request rejected: "+action, slog.String("error", err.Error()))
	c.JSON(status, gin.H{"error": err.Error()})
}

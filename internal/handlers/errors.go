package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/bizledger/internal/apperrors"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// retryAfterSeconds is advertised on lock contention. Postings are idempotent, so a retry is safe.
const retryAfterSeconds = "1"

// respondError maps service errors onto HTTP responses. failMsg is shown for unexpected errors
// only; the underlying error is logged, never returned to the client.
func respondError(c *gin.Context, err error, failMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var (
		validationErr  *apperrors.ValidationError
		configErr      *apperrors.ConfigurationError
		concurrencyErr *apperrors.ConcurrencyError
	)
	switch {
	case errors.As(err, &validationErr):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "reason": validationErr.Reason})
	case errors.As(err, &configErr):
		logger.Warn("Account map incomplete", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "missingKeys": configErr.MissingKeys})
	case errors.As(err, &concurrencyErr):
		logger.Warn("Document busy", slog.String("error", err.Error()))
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusConflict, gin.H{"error": "Document is being posted by another request, retry later", "reason": concurrencyErr.Kind})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Conflict", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(failMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": failMsg})
	}
}

// respondBindError reports a request that failed binding or struct validation.
func respondBindError(c *gin.Context, err error, what string) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + ": " + err.Error()})
}

// tenantID returns the tenant set by the tenant middleware.
func tenantID(c *gin.Context) string {
	id, _ := middleware.GetTenantIDFromContext(c)
	return id
}

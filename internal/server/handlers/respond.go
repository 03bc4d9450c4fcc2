package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
	"github.com/mamadbah2/stockwise/internal/service/advisor"
	"github.com/mamadbah2/stockwise/internal/service/farm"
)

// errUnavailable marks an optional feature that is not configured.
var errUnavailable = errors.New("feature is not configured")

const suggestionFailedMessage = "Failed to get care strategy suggestions. Please try again."

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, farm.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidLivestock),
		errors.Is(err, models.ErrInvalidPen),
		errors.Is(err, models.ErrInvalidEntry),
		errors.Is(err, advisor.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, farm.ErrIncompatiblePen):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, advisor.ErrAdvisorDisabled), errors.Is(err, errUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, advisor.ErrSuggestionFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": suggestionFailedMessage})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Debug("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

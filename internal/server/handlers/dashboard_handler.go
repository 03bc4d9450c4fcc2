package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
	"github.com/mamadbah2/stockwise/internal/service/export"
)

// DashboardService builds the home-screen overview.
type DashboardService interface {
	Dashboard(now time.Time) models.Dashboard
}

// CareAdvisor suggests care strategies.
type CareAdvisor interface {
	SuggestCareStrategies(ctx context.Context, req models.CareStrategyRequest) (models.CareStrategySuggestion, error)
}

// Exporter copies the farm into a spreadsheet.
type Exporter interface {
	Export(ctx context.Context) (export.Result, error)
}

// InsightsHandler serves the dashboard, the care advisor and the export.
type InsightsHandler struct {
	dashboard DashboardService
	advisor   CareAdvisor
	exporter  Exporter
	now       func() time.Time
	logger    *zap.Logger
}

// NewInsightsHandler constructs the handler. exporter may be nil when the
// spreadsheet export is not configured.
func NewInsightsHandler(dashboard DashboardService, advisor CareAdvisor, exporter Exporter, logger *zap.Logger) *InsightsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightsHandler{
		dashboard: dashboard,
		advisor:   advisor,
		exporter:  exporter,
		now:       time.Now,
		logger:    logger,
	}
}

// Dashboard returns totals, pen occupancy and upcoming important dates.
func (h *InsightsHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Dashboard(h.now().UTC()))
}

// CareStrategies asks the advisor for suggestions.
func (h *InsightsHandler) CareStrategies(c *gin.Context) {
	var req models.CareStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	suggestion, err := h.advisor.SuggestCareStrategies(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

// ExportSheets writes the livestock and pen sheets.
func (h *InsightsHandler) ExportSheets(c *gin.Context) {
	if h.exporter == nil {
		respondError(c, h.logger, fmt.Errorf("sheets export: %w", errUnavailable))
		return
	}

	result, err := h.exporter.Export(c.Request.Context())
	if err != nil {
		h.logger.Error("sheets export failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "export to Google Sheets failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

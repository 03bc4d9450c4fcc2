package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
	"github.com/mamadbah2/stockwise/internal/service/farm"
)

// PenService is the part of the farm repository used by PenHandler.
type PenService interface {
	PenCounts() []models.PenOccupancy
	GetPenByID(id string) (models.Pen, error)
	AddPen(ctx context.Context, pen models.Pen) (models.Pen, error)
	UpdatePen(ctx context.Context, pen models.Pen) (models.Pen, error)
	GetLivestockInPen(penID string) []models.Livestock
	AddBulkActivityLogToPen(ctx context.Context, penID string, entry models.ActivityLog) ([]models.ActivityLog, error)
	EligiblePens(category models.Category) []models.Pen
}

// PenHandler serves pens and pen-wide operations.
type PenHandler struct {
	svc    PenService
	logger *zap.Logger
}

// NewPenHandler constructs the handler.
func NewPenHandler(svc PenService, logger *zap.Logger) *PenHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PenHandler{svc: svc, logger: logger}
}

// List returns every pen with its occupant count.
func (h *PenHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.PenCounts())
}

// Get returns one pen.
func (h *PenHandler) Get(c *gin.Context) {
	pen, err := h.svc.GetPenByID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pen)
}

// Create adds a pen.
func (h *PenHandler) Create(c *gin.Context) {
	var req penRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	pen, err := req.toModel()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	created, err := h.svc.AddPen(c.Request.Context(), pen)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update replaces a pen. Restricting a pen to a category some occupant does
// not share is rejected.
func (h *PenHandler) Update(c *gin.Context) {
	var req penRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	pen, err := req.toModel()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	pen.ID = c.Param("id")

	if pen.AllowedCategory != nil {
		for _, animal := range h.svc.GetLivestockInPen(pen.ID) {
			if animal.Category != *pen.AllowedCategory {
				respondError(c, h.logger, fmt.Errorf("pen %s holds %s: %w", pen.ID, animal.Category, farm.ErrIncompatiblePen))
				return
			}
		}
	}

	updated, err := h.svc.UpdatePen(c.Request.Context(), pen)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Livestock lists the records assigned to a pen.
func (h *PenHandler) Livestock(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.svc.GetPenByID(id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.GetLivestockInPen(id))
}

// BulkActivityLog appends the same log entry to every record in a pen.
func (h *PenHandler) BulkActivityLog(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	entry, err := req.toModel()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	created, err := h.svc.AddBulkActivityLogToPen(c.Request.Context(), c.Param("id"), entry)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"count": len(created), "activityLogs": created})
}

// Eligible lists the pens that may receive a record of the queried category.
func (h *PenHandler) Eligible(c *gin.Context) {
	category, err := models.ParseCategory(c.Query("category"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, h.svc.EligiblePens(category))
}

var _ PenService = (*farm.Service)(nil)
var _ LivestockService = (*farm.Service)(nil)

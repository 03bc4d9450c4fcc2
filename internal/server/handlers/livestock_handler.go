package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/domain/models"
	"github.com/mamadbah2/stockwise/internal/repository/images"
)

// LivestockService is the part of the farm repository used by LivestockHandler.
type LivestockService interface {
	ListLivestock() []models.Livestock
	GetLivestockByID(id string) (models.Livestock, error)
	AddLivestockChecked(ctx context.Context, animal models.Livestock) (models.Livestock, error)
	UpdateLivestockChecked(ctx context.Context, animal models.Livestock) (models.Livestock, error)
	SetImage(ctx context.Context, livestockID, imageURL string) (models.Livestock, error)
	AddActivityLog(ctx context.Context, livestockID string, entry models.ActivityLog) (models.ActivityLog, error)
	AddImportantDate(ctx context.Context, livestockID string, entry models.ImportantDate) (models.ImportantDate, error)
}

// LivestockHandler serves the livestock registry.
type LivestockHandler struct {
	svc    LivestockService
	images images.Store
	logger *zap.Logger
}

// NewLivestockHandler constructs the handler. imageStore may be nil, which
// disables uploads.
func NewLivestockHandler(svc LivestockService, imageStore images.Store, logger *zap.Logger) *LivestockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LivestockHandler{svc: svc, images: imageStore, logger: logger}
}

// List returns every record.
func (h *LivestockHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.ListLivestock())
}

// Get returns one record.
func (h *LivestockHandler) Get(c *gin.Context) {
	animal, err := h.svc.GetLivestockByID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, animal)
}

// Create registers a new record. The chosen pen must accept its category.
func (h *LivestockHandler) Create(c *gin.Context) {
	var req livestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	animal, err := req.toModel()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	created, err := h.svc.AddLivestockChecked(c.Request.Context(), animal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("livestock registered", zap.String("id", created.ID), zap.String("category", string(created.Category)))
	c.JSON(http.StatusCreated, created)
}

// Update replaces the editable fields of a record. Logs, dates and the image
// are kept. The pen check applies when the pen or the category changes.
func (h *LivestockHandler) Update(c *gin.Context) {
	var req livestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	existing, err := h.svc.GetLivestockByID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	animal, err := req.toModel()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	animal.ID = existing.ID
	animal.ActivityLogs = existing.ActivityLogs
	animal.ImportantDates = existing.ImportantDates
	animal.ImageURL = existing.ImageURL

	updated, err := h.svc.UpdateLivestockChecked(c.Request.Context(), animal)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// AddActivityLog appends a log entry to one record.
func (h *LivestockHandler) AddActivityLog(c *gin.Context) {
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

	created, err := h.svc.AddActivityLog(c.Request.Context(), c.Param("id"), entry)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// AddImportantDate appends a milestone to one record.
func (h *LivestockHandler) AddImportantDate(c *gin.Context) {
	var req importantDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	entry, err := req.toModel()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	created, err := h.svc.AddImportantDate(c.Request.Context(), c.Param("id"), entry)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UploadImage stores the multipart "image" file and links it to the record.
func (h *LivestockHandler) UploadImage(c *gin.Context) {
	if h.images == nil {
		respondError(c, h.logger, fmt.Errorf("image uploads: %w", errUnavailable))
		return
	}

	id := c.Param("id")
	if _, err := h.svc.GetLivestockByID(id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if file.Size > images.MaxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image is too large"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !images.Supported(contentType) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("unsupported image type %q", contentType)})
		return
	}

	key, err := images.NewKey(id, contentType)
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("open upload: %w", err))
		return
	}
	defer src.Close()

	url, err := h.images.Put(c.Request.Context(), key, src, contentType)
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("store image: %w", err))
		return
	}

	updated, err := h.svc.SetImage(c.Request.Context(), id, url)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("livestock image stored", zap.String("id", id), zap.String("url", url))
	c.JSON(http.StatusOK, updated)
}

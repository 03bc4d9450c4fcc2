package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockwise/internal/server/handlers"
	"github.com/mamadbah2/stockwise/internal/server/metrics"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Livestock *handlers.LivestockHandler
	Pens      *handlers.PenHandler
	Insights  *handlers.InsightsHandler
	Metrics   *metrics.Metrics
	// ImageRoot is served under /images when set.
	ImageRoot string
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if h.ImageRoot != "" {
		r.Static("/images", h.ImageRoot)
	}

	api := r.Group("/api")

	api.GET("/livestock", h.Livestock.List)
	api.POST("/livestock", h.Livestock.Create)
	api.GET("/livestock/:id", h.Livestock.Get)
	api.PUT("/livestock/:id", h.Livestock.Update)
	api.POST("/livestock/:id/activity-logs", h.Livestock.AddActivityLog)
	api.POST("/livestock/:id/important-dates", h.Livestock.AddImportantDate)
	api.POST("/livestock/:id/image", h.Livestock.UploadImage)

	api.GET("/pens", h.Pens.List)
	api.POST("/pens", h.Pens.Create)
	api.GET("/pens/eligible", h.Pens.Eligible)
	api.GET("/pens/:id", h.Pens.Get)
	api.PUT("/pens/:id", h.Pens.Update)
	api.GET("/pens/:id/livestock", h.Pens.Livestock)
	api.POST("/pens/:id/activity-logs", h.Pens.BulkActivityLog)

	api.GET("/dashboard", h.Insights.Dashboard)
	api.POST("/ai/care-strategies", h.Insights.CareStrategies)
	api.POST("/export/sheets", h.Insights.ExportSheets)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

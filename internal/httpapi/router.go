// Package httpapi exposes the assistant over HTTP as JSON.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/lenta-assistant/pkg/metrics"
)

// NewRouter wires every route of h into a gin engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	api.GET("/cities", h.Cities)
	api.GET("/cities/:id/stores", h.CityStores)

	api.GET("/stores/nearest", h.NearestStore)
	api.GET("/stores/:id", h.Store)
	api.GET("/stores/:id/catalog", h.Catalog)
	api.GET("/stores/:id/skus", h.SearchSkus)
	api.GET("/stores/:id/skus/:code", h.Sku)
	api.GET("/stores/:id/barcode/:barcode", h.Barcode)

	api.POST("/users", h.RegisterUser)
	api.GET("/users/:id/store", h.UserStore)
	api.POST("/users/:id/store", h.SelectStore)
	api.GET("/users/:id/skus", h.TrackedSkus)
	api.POST("/users/:id/skus", h.TrackSku)
	api.DELETE("/users/:id/skus/:code", h.UntrackSku)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse(CodeNotFound, "route not found"))
	})

	return r
}

// requestLogger logs every request at debug, failures at warn.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Debug()
		if status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}

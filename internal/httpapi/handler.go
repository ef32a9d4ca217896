package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/lenta-assistant/internal/assistant"
	"github.com/Sternrassler/lenta-assistant/internal/storage"
	"github.com/Sternrassler/lenta-assistant/pkg/logging"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping() error
}

// Handler serves the assistant operations as JSON.
type Handler struct {
	svc    *assistant.Service
	db     Pinger
	logger zerolog.Logger
}

// NewHandler creates a handler. db may be nil.
func NewHandler(svc *assistant.Service, db Pinger) *Handler {
	return &Handler{
		svc:    svc,
		db:     db,
		logger: logging.NewLogger("http"),
	}
}

// Health reports 200 when the database answers.
func (h *Handler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			h.logger.Warn().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, errorResponse(CodeUnhealthy, "database unavailable"))
			return
		}
	}
	c.JSON(http.StatusOK, successResponse(gin.H{"status": "ok"}))
}

// Cities lists cities with stores.
func (h *Handler) Cities(c *gin.Context) {
	cities, err := h.svc.Cities(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]cityResponse, 0, len(cities))
	for _, city := range cities {
		out = append(out, newCityResponse(city))
	}
	c.JSON(http.StatusOK, successResponse(out))
}

// CityStores lists the stores of a city.
func (h *Handler) CityStores(c *gin.Context) {
	stores, err := h.svc.CityStores(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]storeResponse, 0, len(stores))
	for _, store := range stores {
		out = append(out, newStoreResponse(store))
	}
	c.JSON(http.StatusOK, successResponse(out))
}

// NearestStore finds the store closest to ?lat=&long=.
func (h *Handler) NearestStore(c *gin.Context) {
	var q nearestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	store, err := h.svc.NearestStore(c.Request.Context(), *q.Lat, *q.Long)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newStoreResponse(store)))
}

// Store fetches a store.
func (h *Handler) Store(c *gin.Context) {
	store, err := h.svc.Store(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newStoreResponse(store)))
}

// Catalog returns the catalog tree of a store. ?group= narrows it to the
// categories of a group, ?category= to the subcategories of a category.
func (h *Handler) Catalog(c *gin.Context) {
	ctx := c.Request.Context()
	storeID := c.Param("id")

	if category := c.Query("category"); category != "" {
		subcategories, err := h.svc.CategorySubcategories(ctx, storeID, category)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse(newSubcategoryResponses(subcategories)))
		return
	}

	if group := c.Query("group"); group != "" {
		categories, err := h.svc.GroupCategories(ctx, storeID, group)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse(newCategoryResponses(categories)))
		return
	}

	groups, err := h.svc.CatalogGroups(ctx, storeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newGroupResponses(groups)))
}

// SearchSkus searches the SKUs of a store.
func (h *Handler) SearchSkus(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	skus, err := h.svc.Search(c.Request.Context(), c.Param("id"), q.params())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newSkuResponses(skus)))
}

// Sku fetches a SKU of a store.
func (h *Handler) Sku(c *gin.Context) {
	sku, err := h.svc.Sku(c.Request.Context(), c.Param("id"), c.Param("code"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newSkuResponse(sku)))
}

// Barcode looks a SKU of a store up by barcode.
func (h *Handler) Barcode(c *gin.Context) {
	lookup, err := h.svc.LookupBarcode(c.Request.Context(), c.Param("id"), c.Param("barcode"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newBarcodeResponse(lookup)))
}

// RegisterUser stores a user.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user := storage.User{ID: req.ID, FirstName: req.FirstName, LastName: req.LastName}
	if err := h.svc.Register(c.Request.Context(), user); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(gin.H{"id": req.ID}))
}

// SelectStore sets the store of a user.
func (h *Handler) SelectStore(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req selectStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	store, err := h.svc.SelectStore(c.Request.Context(), userID, req.StoreID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newStoreResponse(store)))
}

// UserStore returns the store of a user.
func (h *Handler) UserStore(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	store, err := h.svc.UserStore(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newStoreResponse(store)))
}

// TrackedSkus lists the SKUs tracked by a user.
func (h *Handler) TrackedSkus(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	skus, err := h.svc.TrackedSkus(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(newSkuResponses(skus)))
}

// TrackSku adds a SKU to the tracked list of a user.
func (h *Handler) TrackSku(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req trackSkuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	sku, err := h.svc.TrackSku(c.Request.Context(), userID, req.Code)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse(newSkuResponse(sku)))
}

// UntrackSku removes a SKU from the tracked list of a user.
func (h *Handler) UntrackSku(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := h.svc.UntrackSku(c.Request.Context(), userID, c.Param("code")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "user id must be a positive integer")
		return 0, false
	}
	return id, true
}

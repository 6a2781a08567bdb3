package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/logger"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/service"
)

// ContentHandler serves CRUD over the managed collections.
type ContentHandler struct {
	stores map[string]*service.Content
	logger *logger.Logger
}

func NewContentHandler(stores map[string]*service.Content, logger *logger.Logger) *ContentHandler {
	return &ContentHandler{
		stores: stores,
		logger: logger,
	}
}

func (h *ContentHandler) store(c *gin.Context) (*service.Content, bool) {
	name := c.Param("collection")
	store, ok := h.stores[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return nil, false
	}
	return store, true
}

func (h *ContentHandler) List(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	items, err := store.List(c.Request.Context())
	if err != nil {
		if errors.Is(err, model.ErrSiteNotReady) {
			respondError(c, err)
			return
		}
		// Stale cache is still served; the client learns freshness from
		// the flag rather than an error page.
		c.JSON(http.StatusOK, gin.H{"items": items, "stale": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "stale": false})
}

func (h *ContentHandler) Create(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := store.Create(c.Request.Context(), fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *ContentHandler) Update(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := store.Update(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete requires an explicit confirm flag. Without it the request is
// rejected before the service is touched.
func (h *ContentHandler) Delete(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deletion requires confirm=true"})
		return
	}

	if err := store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrSiteNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "site is not ready"})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, model.ErrRemoteUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "remote store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

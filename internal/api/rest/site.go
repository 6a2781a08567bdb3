package rest

import (
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/gate"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/logger"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/service"
)

// SiteHandler serves site identity, status and logo operations.
type SiteHandler struct {
	resolver *service.Site
	media    model.Storage
	logger   *logger.Logger
}

func NewSiteHandler(resolver *service.Site, media model.Storage, logger *logger.Logger) *SiteHandler {
	return &SiteHandler{
		resolver: resolver,
		media:    media,
		logger:   logger,
	}
}

// Get is public. It always answers: while the site is unresolved it reports
// the fail-open default so the front end never blocks on the backend.
func (h *SiteHandler) Get(c *gin.Context) {
	config, _ := h.resolver.Config()
	session := SessionFromContext(c)

	body := gin.H{
		"site_id":  config.SiteID,
		"status":   config.Status,
		"logo_url": config.LogoURL,
		"ready":    h.resolver.Ready(),
	}

	decision := gate.DecidePublic(config.Status, session.User != nil)
	if decision.Action == gate.RedirectHolding {
		body["holding"] = decision.RedirectTo
	}

	c.JSON(http.StatusOK, body)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *SiteHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	status := model.SiteStatus(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid status %q", req.Status)})
		return
	}

	if err := h.resolver.SetStatus(c.Request.Context(), status); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *SiteHandler) UploadLogo(c *gin.Context) {
	if h.media == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "media storage not configured"})
		return
	}

	file, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read logo file"})
		return
	}
	defer src.Close()

	key := fmt.Sprintf("logo/%d%s", time.Now().UnixMilli(), path.Ext(file.Filename))
	url, err := h.media.Upload(c.Request.Context(), key, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		h.logger.Error("logo upload failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to store logo"})
		return
	}

	if err := h.resolver.SetLogoURL(c.Request.Context(), url); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logo_url": url})
}

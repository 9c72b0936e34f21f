package api

import (
	"net/http"

	"social-listening-gateway/internal/panel"
	"social-listening-gateway/internal/pkg/models"

	"github.com/gin-gonic/gin"
)

// Handler exposes the panel actions over HTTP.
type Handler struct {
	Panel *panel.Service
}

func NewHandler(p *panel.Service) *Handler {
	return &Handler{Panel: p}
}

func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) HandleCluster(c *gin.Context) {
	var req models.ClusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Panel.Cluster(c.Request.Context(), &req))
}

func (h *Handler) HandleScrape(c *gin.Context) {
	platform := c.Param("platform")
	if !h.Panel.HasPlatform(platform) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown platform", "platform": platform})
		return
	}

	var req models.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Panel.Scrape(c.Request.Context(), platform, &req))
}

func (h *Handler) HandleSearch(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Panel.Search(c.Request.Context(), &req))
}

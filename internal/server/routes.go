package server

import (
	"social-listening-gateway/internal/api"
	"social-listening-gateway/internal/ratelimit"
	"social-listening-gateway/internal/websocket"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, h *api.Handler, socket *websocket.PanelSocket, signingSecret string, limiter ratelimit.Limiter) {
	r.GET("/healthz", h.HandleHealth)

	v1 := r.Group("/v1/panel")
	v1.Use(api.AuthMiddleware(signingSecret))

	v1.POST("/cluster", api.RateLimitMiddleware(limiter, "cluster"), h.HandleCluster)
	v1.POST("/scrape/:platform", api.RateLimitMiddleware(limiter, "scrape"), h.HandleScrape)
	v1.POST("/search", api.RateLimitMiddleware(limiter, "search"), h.HandleSearch)

	// socket messages are rate limited one by one
	v1.GET("/connect", socket.Handle)
}

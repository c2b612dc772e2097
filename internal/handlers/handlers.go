package handlers

import (
	"net/http"

	"github.com/aja5jo/ggoggolist-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// SetupRoutes registers all routes and shared middleware on the engine.
func SetupRoutes(r *gin.Engine, h *Handlers) {
	r.Use(middleware.RequestID())
	r.Use(otelgin.Middleware("ggoggolist-recommendation"))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/feed/home", h.GetHomeFeed)
	}
}

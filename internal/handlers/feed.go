package handlers

import (
	"net/http"
	"strconv"

	apierrors "github.com/aja5jo/ggoggolist-backend/internal/errors"
	"github.com/aja5jo/ggoggolist-backend/internal/logger"
	"github.com/aja5jo/ggoggolist-backend/internal/metrics"
	"github.com/aja5jo/ggoggolist-backend/internal/recommend"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultFeedSize = 10
	maxFeedSize     = 50
)

// Handlers bundles the HTTP handlers with their dependencies
type Handlers struct {
	rec *recommend.Service
}

// NewHandlers creates the handler set
func NewHandlers(rec *recommend.Service) *Handlers {
	return &Handlers{rec: rec}
}

// GetHomeFeed returns the personalized (or anonymous) home feed.
// GET /api/feed/home?size=10
// The upstream auth proxy injects X-User-ID for authenticated sessions;
// requests without it get the popularity feed.
func (h *Handlers) GetHomeFeed(c *gin.Context) {
	size := defaultFeedSize
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			apiErr := apierrors.BadRequest("size must be a positive integer")
			c.JSON(apiErr.Status, apiErr)
			return
		}
		size = parsed
	}
	if size > maxFeedSize {
		size = maxFeedSize
	}

	var userID *int64
	mode := "anonymous"
	if raw := c.GetHeader("X-User-ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			apiErr := apierrors.BadRequest("invalid X-User-ID header")
			c.JSON(apiErr.Status, apiErr)
			return
		}
		userID = &parsed
		mode = "personalized"
	}

	items, err := h.rec.RecommendHome(c.Request.Context(), userID, size)
	if err != nil {
		metrics.Recommendation.FeedRequestsTotal.WithLabelValues(mode, "error").Inc()
		logger.Log.Error("Home feed build failed",
			zap.String("mode", mode),
			zap.Error(err))
		apiErr := apierrors.Internal("failed to build feed")
		c.JSON(apiErr.Status, apiErr)
		return
	}

	metrics.Recommendation.FeedRequestsTotal.WithLabelValues(mode, "ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/decor-platform/internal/service"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GET /analytics/summary (admin)
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	s, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

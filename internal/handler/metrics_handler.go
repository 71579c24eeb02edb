package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/service"
)

// MetricsHandler serves the prometheus scrape endpoint and the health probe.
type MetricsHandler struct {
	prom http.Handler
}

// NewMetricsHandler constructs a metrics handler. A nil service yields a
// handler whose scrape endpoint reports unavailable.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	h := &MetricsHandler{}
	if metrics != nil {
		h.prom = metrics.Handler()
	}
	return h
}

// Prometheus serves the metrics scrape endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.prom == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.prom.ServeHTTP(c.Writer, c.Request)
}

// Health is the liveness/readiness probe.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

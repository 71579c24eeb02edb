package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gympoint/gympoint-api/internal/service"
)

// Metrics records per-request duration and count on the metrics service.
// Requests are labeled by route template so path parameters do not explode
// the label set.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}

func routeLabel(c *gin.Context) string {
	if tmpl := c.FullPath(); tmpl != "" {
		return tmpl
	}
	// unmatched route, fall back to the raw path
	return c.Request.URL.Path
}

package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"greenride/internal/observability"
)

// MetricsMiddleware records per-request counters and latency, labelled
// by the route template so path parameters do not explode cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		observability.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		observability.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

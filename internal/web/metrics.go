package web

import (
	"fmt"
	"strconv"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
)

// meterRequests counts served views by route pattern and status.
func meterRequests(set *metrics.Set) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		set.GetOrCreateCounter(fmt.Sprintf(`contactbook_http_requests_total{method=%q,path=%q,status=%q}`, c.Request.Method, path, status)).Inc()
		set.GetOrCreateHistogram(fmt.Sprintf(`contactbook_http_request_duration_seconds{method=%q,path=%q}`, c.Request.Method, path)).UpdateDuration(start)
	}
}

func serveMetrics(set *metrics.Set) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		set.WritePrometheus(c.Writer)
		metrics.WriteProcessMetrics(c.Writer)
	}
}

package apiclient

import (
	"fmt"
	"io"
	"time"
)

func (c *Client) observe(method, route, status string, start time.Time) {
	c.metrics.GetOrCreateCounter(fmt.Sprintf(`contactbook_api_requests_total{method=%q,path=%q,status=%q}`, method, route, status)).Inc()
	c.metrics.GetOrCreateHistogram(fmt.Sprintf(`contactbook_api_request_duration_seconds{method=%q,path=%q}`, method, route)).UpdateDuration(start)
}

// WriteMetrics writes the client's metrics in Prometheus text format.
func (c *Client) WriteMetrics(w io.Writer) {
	c.metrics.WritePrometheus(w)
}

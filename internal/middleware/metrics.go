package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fluxo/internal/telemetry"
)

// Metrics records request count and latency per matched route.
func Metrics(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

package middleware

import (
	"github.com/gin-gonic/gin"
)

// RequestRecorder is the part of the metrics registry the HTTP layer feeds
type RequestRecorder interface {
	RequestStarted() func(method, route string, status int)
}

// Metrics records request count, latency and in-flight requests per route
// pattern. Unmatched paths share one label so scans cannot blow up cardinality.
func Metrics(recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := recorder.RequestStarted()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}

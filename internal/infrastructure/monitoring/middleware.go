package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		// Route templates keep label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(method, path, status, time.Since(start), int64(c.Writer.Size()))
	}
}

// Timer measures one invocation
type Timer struct {
	start   time.Time
	metrics *Metrics
	module  string
}

// StartExecution marks an invocation in flight and returns its timer
func StartExecution(metrics *Metrics, module string) *Timer {
	metrics.ExecutionStarted()
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
		module:  module,
	}
}

// Stop records the outcome and returns the elapsed time
func (t *Timer) Stop(status string) time.Duration {
	elapsed := time.Since(t.start)
	t.metrics.ExecutionFinished(t.module, status, elapsed)
	return elapsed
}

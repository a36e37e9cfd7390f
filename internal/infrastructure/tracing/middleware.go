package tracing

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HTTPMiddleware assigns each request a trace, echoes it in response
// headers and writes one access-log line when the handler returns.
func HTTPMiddleware(tracer *Tracer, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if traceID := c.GetHeader(HeaderTraceID); traceID != "" {
			ctx = WithTraceID(ctx, TraceID(traceID))
		} else if reqID := c.GetHeader(HeaderRequestID); reqID != "" {
			ctx = WithTraceID(ctx, TraceID(reqID))
		}

		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+c.Request.URL.Path)
		c.Request = c.Request.WithContext(ctx)

		c.Header(HeaderTraceID, string(span.TraceID))
		c.Header(HeaderRequestID, string(span.TraceID))

		start := time.Now()
		c.Next()

		var err error
		if len(c.Errors) > 0 {
			err = c.Errors.Last()
		}
		tracer.End(span, err)

		logger.Info("request",
			zap.String("trace_id", string(span.TraceID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

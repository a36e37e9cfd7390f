/*
Package tracing provides lightweight request tracing for the module host.

Every HTTP request gets a trace ID (taken from X-Trace-ID or X-Request-ID
when the caller supplies one) that is echoed in the response headers and
carried in the request context. Invocations started from that request open
child spans for artifact loading and module execution, so one trace ID ties
the access log to the invocation log lines.

# Usage

	tracer := tracing.New("modhost", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer, logger))

	span, ctx := tracer.StartSpan(ctx, "module.run")
	span.SetTag("command", argv[0])
	err := run(ctx)
	tracer.End(span, err)

Finished spans are buffered (1000) and written by a single collector
goroutine; a full buffer drops spans rather than blocking callers.
*/
package tracing

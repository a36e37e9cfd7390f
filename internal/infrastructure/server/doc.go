// Package server assembles the HTTP service: configuration, logging,
// metrics, the execution engine and the gin router with its middleware.
//
// Routes:
//   - GET / and POST /theme: the review page
//   - GET /products, GET /presets: form data
//   - POST /run, GET /stream: module runs (rate limited)
//   - GET /health, GET /metrics: health and Prometheus exposition
//   - /static: the artifact directory
//
// Responses are gzip compressed except the WebSocket stream.
package server

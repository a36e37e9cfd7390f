// Package http provides the gin handlers for the advisory review page.
//
// Endpoints:
//   - Page: GET / (theme taken from the cvrf-theme cookie)
//   - Theme: POST /theme
//   - Form data: GET /products, GET /presets
//   - Run: POST /run (form or JSON query)
//   - Health: GET /health
//
// Run responds with {"html": ..., "exit": "ok"} on success. Failures are
// reported as {"error": ...} in plain text, never rendered: 502 when the
// module artifact cannot be loaded, 500 otherwise.
//
// Example Usage:
//
//	router.SetHTMLTemplate(http.Templates())
//	handlers := http.NewHandlers(runner, products, metrics, logger)
//	router.GET("/", handlers.Page)
//	router.POST("/run", handlers.Run)
package http

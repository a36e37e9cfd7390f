// Package main is the entry point for the modhost HTTP service.
//
// The service serves the advisory review page, runs the review module for
// each query and returns its output rendered to HTML.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -module http://localhost:8000/static/main.wasm
//
//	# Development mode (colored logs, debug level)
//	./server -dev -log-level debug
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main

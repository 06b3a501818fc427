// Package api provides the HTTP API layer for the yafct resolution service.
//
// This package is a thin wrapper around pkg/server: it configures structured
// logging and registers the resolve handler. Server lifecycle, middleware,
// health and metrics endpoints live in pkg/server.
//
// # Endpoints
//
// Application endpoints (rate limited):
//   - POST /v1/resolve - resolve a model, with an optional overlay, supplied in the body
//
// System endpoints:
//   - GET /health  - liveness probe
//   - GET /ready   - readiness probe
//   - GET /metrics - Prometheus metrics
//
// # Request Body
//
// The body is JSON (application/json) or YAML (application/yaml):
//
//	model: |
//	  config FEATURE
//	  	bool "feature"
//	  	default y
//	overlay: |
//	  # CONFIG_FEATURE is not set
//	overlayFormat: lines
//	configPrefix: CONFIG_
//
// The model must be self-contained: source directives are rejected.
//
// Example:
//
//	curl -X POST http://localhost:8080/v1/resolve \
//	  -H "Content-Type: application/yaml" \
//	  --data-binary @request.yaml
//
// # Configuration
//
//   - PORT: HTTP server port (default: 8080)
//   - LOG_LEVEL: logging level (debug, info, warn, error)
//
// Version information is set at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/yafct/pkg/api.version=1.0.0'"
package api

// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server is the HTTP front end shared by yafct services: system
// endpoints plus caller-supplied API handlers behind a middleware chain.
//
// # Usage
//
//	s := server.New(
//		server.WithName("yafctd"),
//		server.WithVersion(version),
//		server.WithHandler(map[string]http.HandlerFunc{
//			"/v1/resolve": handleResolve,
//		}),
//	)
//	if err := s.Run(ctx); err != nil {
//		return err
//	}
//
// # Endpoints
//
//	GET /         name, version, readiness and route listing
//	GET /health   liveness, always 200
//	GET /ready    readiness, 503 until Run starts serving
//	GET /metrics  Prometheus metrics
//
// # Middleware
//
// API handlers are wrapped, outermost first, with request metrics, API
// version negotiation (Accept: application/vnd.nvidia.yafct.v1+json),
// X-Request-Id tracking, panic recovery, token bucket rate limiting
// (golang.org/x/time/rate), a request body limit and debug logging.
//
// # Error Handling
//
// Errors are returned as ErrorResponse JSON:
//
//	{
//	  "code": "PARSE_ERROR",
//	  "message": "[PARSE_ERROR] Kconfig:3: reference to undeclared symbol X",
//	  "details": {"file": "Kconfig", "line": 3},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2025-01-01T00:00:00Z",
//	  "retryable": false
//	}
//
// StatusFor maps structured error codes to statuses: INVALID_REQUEST 400,
// NOT_FOUND 404, PARSE_ERROR, CYCLIC_DEPENDENCY and TYPE_MISMATCH 422,
// RATE_LIMIT_EXCEEDED 429, SERVICE_UNAVAILABLE 503, TIMEOUT 504.
//
// # Configuration
//
// PORT and SHUTDOWN_TIMEOUT_SECONDS override the defaults from NewConfig.
package server

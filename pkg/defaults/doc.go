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

// Package defaults provides centralized configuration constants for yafct.
//
// This package defines timeout values and resolution bounds used across the
// codebase. Centralizing these values ensures consistency and makes tuning easier.
//
// # Timeout Categories
//
//   - Handler timeouts: For HTTP request processing
//   - Server timeouts: For HTTP server configuration
//   - HTTP client timeouts: For fetching remote models and overlays
//   - ConfigMap timeouts: For Kubernetes ConfigMap input and output
//   - OCI timeouts: For pushing generated artifacts
//
// # Resolution Bounds
//
// FixpointPasses bounds the number of resolution passes over a model before
// the resolver reports a cyclic dependency.
//
// # Usage
//
//	import "github.com/NVIDIA/yafct/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.ResolveBuildTimeout)
//	defer cancel()
package defaults

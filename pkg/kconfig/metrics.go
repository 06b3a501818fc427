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

package kconfig

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Parse metrics
	parseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "yafct_parse_duration_seconds",
			Help:    "Duration of model parsing in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)
	parseErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yafct_parse_errors_total",
			Help: "Total number of models rejected by the parser",
		},
	)

	// Resolution metrics
	resolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "yafct_resolve_duration_seconds",
			Help:    "Duration of fixpoint resolution and materialization in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)
	resolvePasses = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "yafct_resolve_passes",
			Help:    "Number of passes needed for resolution to settle",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
		},
	)
	resolveCycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yafct_resolve_cyclic_dependencies_total",
			Help: "Total number of resolutions aborted for not settling",
		},
	)

	// Overlay metrics
	overlayAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yafct_overlay_assignments_total",
			Help: "Total number of overlay assignments by result",
		},
		[]string{"result"},
	)
)

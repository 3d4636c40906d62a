// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package metrics instruments the analysis engine for Prometheus:
// run throughput and latency, operator call volume, context cache
// efficiency and accessor failures.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_runs_started_total",
			Help: "Total number of analysis runs started",
		},
		[]string{"analysis_type"},
	)

	RunsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_runs_finished_total",
			Help: "Total number of analysis runs finished",
		},
		[]string{"analysis_type", "success"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_run_duration_seconds",
			Help:    "Wall-clock duration of analysis runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"analysis_type"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analysis_queue_depth",
			Help: "Number of runs waiting for a worker",
		},
	)

	OperatorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_operator_calls_total",
			Help: "Total number of operator invocations",
		},
		[]string{"operator"},
	)

	ContextCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_context_cache_hits_total",
			Help: "Series loads answered from the run context cache",
		},
	)

	ContextCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analysis_context_cache_misses_total",
			Help: "Series loads that went to the data accessor",
		},
	)

	AccessorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_accessor_errors_total",
			Help: "Data accessor failures by provider kind",
		},
		[]string{"provider"},
	)

	LiveRunContexts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "analysis_live_run_contexts",
			Help: "Run contexts currently held in the registry",
		},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "API requests currently in flight",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequests.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// ObserveRun records one finished run.
func ObserveRun(analysisType string, start time.Time, success bool) {
	RunsFinished.WithLabelValues(analysisType, strconv.FormatBool(success)).Inc()
	RunDuration.WithLabelValues(analysisType).Observe(time.Since(start).Seconds())
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors shared across the app.
// Collectors register with the default registry on init.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AuthEvents counts credential operations by operation and outcome.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoblog_auth_events_total",
		Help: "Admin credential operations by operation and result",
	}, []string{"operation", "result"})

	// PipelineStage tracks content pipeline stage latency by result.
	PipelineStage = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "autoblog_pipeline_stage_duration_seconds",
		Help:    "Content pipeline stage duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
	}, []string{"stage", "result"})

	// BulkItems counts bulk import items by result.
	BulkItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoblog_bulk_items_total",
		Help: "Bulk import items by result",
	}, []string{"result"})

	// HTTPRequests counts handled requests by method and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "autoblog_http_requests_total",
		Help: "HTTP requests by method and status",
	}, []string{"method", "status"})
)

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveStage records the duration of one pipeline stage.
func ObserveStage(stage string, start time.Time, err error) {
	PipelineStage.WithLabelValues(stage, Result(err)).Observe(time.Since(start).Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
